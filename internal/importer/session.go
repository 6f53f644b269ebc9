package importer

import (
	"sync"

	"github.com/google/uuid"

	"plinth/internal/catalog"
	"plinth/internal/mesh"
)

// session is the in-memory context of one scan-to-commit-or-discard cycle.
// It is created when a scan finds candidates and discarded on confirm or
// cancel; the importer's mutex guarantees at most one exists.
type session struct {
	id        string
	directory catalog.Directory
	total     int

	// cancelled is polled by the processing loop before each candidate.
	// Writes already in flight are never aborted, only joined.
	cancelled bool
	cancelMu  sync.Mutex

	// writes tracks dispatched staging upserts; joined before any phase
	// transition that depends on canonical identifiers.
	writes sync.WaitGroup

	// mu guards the fields below against the write goroutines.
	mu         sync.Mutex
	buffer     []*mesh.Record
	reconciled map[string]string
	failed     map[string]struct{}
	errors     []ItemError

	// loopDone is closed when the processing loop returns, so a cancel
	// issued mid-run can wait for the loop to stop starting new items.
	loopDone chan struct{}
}

func newSession(dir catalog.Directory, total int) *session {
	return &session{
		id:         uuid.New().String(),
		directory:  dir,
		total:      total,
		reconciled: make(map[string]string),
		failed:     make(map[string]struct{}),
		loopDone:   make(chan struct{}),
	}
}

func (s *session) cancel() {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()
	s.cancelled = true
}

func (s *session) isCancelled() bool {
	s.cancelMu.Lock()
	defer s.cancelMu.Unlock()
	return s.cancelled
}

func (s *session) appendRecord(record *mesh.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = append(s.buffer, record)
}

func (s *session) appendError(itemErr ItemError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, itemErr)
}

func (s *session) resolveWrite(localID, canonicalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconciled[localID] = canonicalID
}

func (s *session) failWrite(localID string, itemErr ItemError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed[localID] = struct{}{}
	s.errors = append(s.errors, itemErr)
}

// finalizeRecords filters out records whose staging write failed and
// rewrites each survivor's identifier to its canonical one. A record with
// no reconciliation entry keeps its local identifier, which means the
// store accepted it unchanged. Call only after writes have been joined.
func (s *session) finalizeRecords() []*mesh.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]*mesh.Record, 0, len(s.buffer))
	for _, record := range s.buffer {
		if _, ok := s.failed[record.LocalID]; ok {
			continue
		}
		if canonical, ok := s.reconciled[record.LocalID]; ok {
			record.LocalID = canonical
		}
		kept = append(kept, record)
	}
	s.buffer = kept
	return kept
}

// canonicalIDs lists the identifiers the store actually created for this
// session. Cancellation scopes its delete to exactly this set.
func (s *session) canonicalIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.reconciled))
	for _, canonical := range s.reconciled {
		ids = append(ids, canonical)
	}
	return ids
}

func (s *session) snapshotErrors() []ItemError {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ItemError, len(s.errors))
	copy(out, s.errors)
	return out
}
