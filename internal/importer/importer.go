package importer

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"plinth/internal/catalog"
	"plinth/internal/config"
	"plinth/internal/logging"
	"plinth/internal/mesh"
	"plinth/internal/scanner"
)

// Processor is the per-item decode boundary. Implementations must be
// deterministic for identical bytes and side-effect free.
type Processor interface {
	Process(candidate scanner.Candidate) (*mesh.Record, error)
}

// Importer is the pipeline orchestrator. All exported methods are safe for
// concurrent use; Cancel may be called from another goroutine while
// StartScan is running.
type Importer struct {
	store      *catalog.Store
	scanner    *scanner.Scanner
	processor  Processor
	logger     *slog.Logger
	yieldEvery int
	progressFn func(Update)
	agg        *aggregator

	stateMu sync.Mutex
	phase   Phase
	session *session
}

// Option customizes an Importer.
type Option func(*Importer)

// WithProcessor replaces the default mesh processor.
func WithProcessor(p Processor) Option {
	return func(imp *Importer) { imp.processor = p }
}

// WithProgressFunc registers a sink for aggregated progress updates. The
// callback runs on pipeline goroutines and must not block.
func WithProgressFunc(fn func(Update)) Option {
	return func(imp *Importer) { imp.progressFn = fn }
}

// New builds an importer over the given store.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger, opts ...Option) *Importer {
	imp := &Importer{
		store:      store,
		scanner:    scanner.New(logger),
		processor:  mesh.NewProcessor(cfg),
		logger:     logging.NewComponentLogger(logger, "importer"),
		yieldEvery: cfg.Import.YieldEvery,
		phase:      PhaseIdle,
	}
	for _, opt := range opts {
		opt(imp)
	}
	interval := time.Duration(cfg.Import.ProgressIntervalMS) * time.Millisecond
	imp.agg = newAggregator(interval, imp.progressFn)
	return imp
}

// StartScan runs the pipeline for one registered directory: scan,
// per-candidate processing, finalization. It returns once the session has
// reached review, or immediately when the scan finds nothing. A second
// scan while a session is live is rejected with ErrSessionActive.
func (imp *Importer) StartScan(ctx context.Context, dir catalog.Directory) error {
	imp.stateMu.Lock()
	if imp.session != nil {
		imp.stateMu.Unlock()
		return ErrSessionActive
	}
	imp.phase = PhaseScanning
	imp.stateMu.Unlock()

	result, err := imp.scanner.Scan(ctx, dir.Path)
	if err != nil {
		imp.setIdle()
		return err
	}
	if touchErr := imp.store.TouchLastScanned(ctx, dir.ID); touchErr != nil {
		imp.logger.Warn("recording scan time failed", logging.Error(touchErr))
	}
	if len(result.Candidates) == 0 {
		imp.logger.Info("scan found no candidates",
			logging.String(logging.FieldDirectory, dir.Path))
		imp.setIdle()
		return nil
	}

	sess := newSession(dir, len(result.Candidates))
	imp.stateMu.Lock()
	imp.session = sess
	imp.phase = PhaseProcessing
	imp.stateMu.Unlock()
	imp.agg.Reset(sess.total)

	imp.logger.Info("processing candidates",
		logging.String(logging.FieldSessionID, sess.id),
		logging.String(logging.FieldDirectory, dir.Path),
		logging.Int("total", sess.total),
	)

	imp.runLoop(ctx, sess, result.Candidates)
	close(sess.loopDone)

	if sess.isCancelled() {
		// Cancel owns the rest of the teardown.
		return nil
	}
	if err := ctx.Err(); err != nil {
		return imp.teardownAborted(ctx, sess, err)
	}

	imp.setPhase(PhaseFinalizing)
	imp.agg.Flush()
	sess.writes.Wait()
	if sess.isCancelled() {
		return nil
	}
	records := sess.finalizeRecords()
	imp.agg.Flush()

	imp.stateMu.Lock()
	if imp.session == sess {
		imp.phase = PhaseReviewing
	}
	imp.stateMu.Unlock()

	imp.logger.Info("session ready for review",
		logging.String(logging.FieldSessionID, sess.id),
		logging.Int("records", len(records)),
		logging.Int("errors", len(sess.snapshotErrors())),
	)
	return nil
}

// teardownAborted cleans up a session whose context expired mid-run. The
// rows already staged are removed the same way an explicit cancel would
// remove them, on a detached context so the delete itself can complete.
func (imp *Importer) teardownAborted(ctx context.Context, sess *session, cause error) error {
	sess.cancel()
	sess.writes.Wait()
	imp.agg.Discard()
	if ids := sess.canonicalIDs(); len(ids) > 0 {
		if _, err := imp.store.CancelBatch(context.WithoutCancel(ctx), ids); err != nil {
			imp.logger.Warn("cleanup after aborted session failed", logging.Error(err))
		}
	}
	imp.clearSession()
	return cause
}

func (imp *Importer) runLoop(ctx context.Context, sess *session, candidates []scanner.Candidate) {
	for i, candidate := range candidates {
		if sess.isCancelled() || ctx.Err() != nil {
			return
		}
		if imp.yieldEvery > 0 && i > 0 && i%imp.yieldEvery == 0 {
			runtime.Gosched()
		}

		record, err := imp.processor.Process(candidate)
		if err != nil {
			itemErr := ItemError{Name: candidate.RelPath, Err: err}
			sess.appendError(itemErr)
			imp.agg.Report(1, candidate.RelPath, &itemErr)
			imp.logger.Warn("processing failed",
				logging.String(logging.FieldSessionID, sess.id),
				logging.String(logging.FieldItemName, candidate.RelPath),
				logging.Error(err),
			)
			continue
		}

		sess.appendRecord(record)
		imp.dispatchStage(ctx, sess, record)
		imp.agg.Report(1, record.Name, nil)
	}
}

// dispatchStage fires the staging upsert without blocking the loop. The
// session's wait group tracks it so phase transitions can join.
func (imp *Importer) dispatchStage(ctx context.Context, sess *session, record *mesh.Record) {
	metadata, err := record.MetadataJSON()
	if err != nil {
		sess.failWrite(record.LocalID, ItemError{Name: record.Name, Err: err})
		return
	}
	item := catalog.StagedItem{
		ID:           record.LocalID,
		DirectoryID:  sess.directory.ID,
		RelPath:      record.RelPath,
		Name:         record.Name,
		SizeBytes:    record.SizeBytes,
		Triangles:    record.Triangles,
		PreviewPNG:   record.PreviewPNG,
		LastModified: record.LastModified,
		MetadataJSON: metadata,
		Tags:         record.Tags,
	}

	sess.writes.Add(1)
	go func() {
		defer sess.writes.Done()
		canonical, err := imp.store.Stage(ctx, item)
		if err != nil {
			itemErr := ItemError{Name: record.Name, Err: err}
			sess.failWrite(record.LocalID, itemErr)
			imp.agg.Report(0, "", &itemErr)
			imp.logger.Warn("staging write failed",
				logging.String(logging.FieldSessionID, sess.id),
				logging.String(logging.FieldItemName, record.Name),
				logging.Error(err),
			)
			return
		}
		sess.resolveWrite(record.LocalID, canonical)
	}()
}

// Confirm commits the reviewed session: flips every staged row to
// confirmed, applies user edits, and returns the final record set with
// edits folded in. A store failure leaves the session intact for retry.
func (imp *Importer) Confirm(ctx context.Context, edits []catalog.Edit) ([]*mesh.Record, error) {
	imp.stateMu.Lock()
	sess := imp.session
	phase := imp.phase
	imp.stateMu.Unlock()
	if sess == nil {
		return nil, ErrNoSession
	}
	if phase != PhaseReviewing {
		return nil, ErrNotReviewing
	}

	sess.writes.Wait()
	records := sess.finalizeRecords()

	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.LocalID)
	}
	if err := imp.store.ConfirmBatch(ctx, ids); err != nil {
		return nil, operationError("confirm batch", err)
	}
	if len(edits) > 0 {
		if err := imp.store.ApplyEdits(ctx, edits); err != nil {
			return nil, operationError("apply edits", err)
		}
		byID := make(map[string]catalog.Edit, len(edits))
		for _, edit := range edits {
			byID[edit.ID] = edit
		}
		for _, record := range records {
			edit, ok := byID[record.LocalID]
			if !ok {
				continue
			}
			if edit.Name != "" {
				record.Name = edit.Name
			}
			if edit.Tags != nil {
				record.Tags = edit.Tags
			}
		}
	}

	imp.logger.Info("session confirmed",
		logging.String(logging.FieldSessionID, sess.id),
		logging.Int("records", len(records)),
	)
	imp.clearSession()
	return records, nil
}

// Cancel discards the live session. During processing it stops the loop
// cooperatively, then joins in-flight writes so the cleanup delete covers
// exactly the canonical identifiers this session created. The delete is
// always scoped to that set; an empty set is a no-op.
func (imp *Importer) Cancel(ctx context.Context) error {
	imp.stateMu.Lock()
	sess := imp.session
	imp.stateMu.Unlock()
	if sess == nil {
		return ErrNoSession
	}

	sess.cancel()
	<-sess.loopDone
	// Join before discarding: a staging write that fails during the join
	// reports through the aggregator and would otherwise re-arm the flush
	// timer, leaking one stale update after the session is gone.
	sess.writes.Wait()
	imp.agg.Discard()

	ids := sess.canonicalIDs()
	if len(ids) > 0 {
		if _, err := imp.store.CancelBatch(ctx, ids); err != nil {
			return operationError("cancel batch", err)
		}
	}

	imp.logger.Info("session cancelled",
		logging.String(logging.FieldSessionID, sess.id),
		logging.Int("removed", len(ids)),
	)
	imp.clearSession()
	return nil
}

// Status reports the current phase and session counters. Records is
// populated only during review.
func (imp *Importer) Status() Snapshot {
	imp.stateMu.Lock()
	defer imp.stateMu.Unlock()

	snap := Snapshot{Phase: imp.phase}
	if imp.session == nil {
		return snap
	}
	snap.Total = imp.session.total
	snap.Errors = imp.session.snapshotErrors()
	snap.Processed, _, snap.CurrentName = imp.agg.Counts()
	if imp.phase == PhaseReviewing {
		imp.session.mu.Lock()
		snap.Records = append(snap.Records, imp.session.buffer...)
		imp.session.mu.Unlock()
	}
	return snap
}

func (imp *Importer) setPhase(phase Phase) {
	imp.stateMu.Lock()
	imp.phase = phase
	imp.stateMu.Unlock()
}

func (imp *Importer) setIdle() {
	imp.stateMu.Lock()
	imp.phase = PhaseIdle
	imp.session = nil
	imp.stateMu.Unlock()
}

func (imp *Importer) clearSession() {
	imp.setIdle()
}
