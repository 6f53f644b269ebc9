package importer

import (
	"sync"
	"time"
)

// aggregator coalesces rapid per-item completion events into periodic
// updates so the emission rate is bounded by the window, not by the
// processing rate. Report merges an event and arms the window timer if it
// is not already armed; Flush force-drains at phase boundaries so no event
// is lost across a transition.
type aggregator struct {
	mu       sync.Mutex
	interval time.Duration
	emit     func(Update)

	processed   int
	total       int
	currentName string
	pending     bool
	newErrors   []ItemError
	timer       *time.Timer
}

func newAggregator(interval time.Duration, emit func(Update)) *aggregator {
	if emit == nil {
		emit = func(Update) {}
	}
	return &aggregator{interval: interval, emit: emit}
}

func (a *aggregator) Reset(total int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopTimerLocked()
	a.processed = 0
	a.total = total
	a.currentName = ""
	a.pending = false
	a.newErrors = nil
}

// Report merges one completion event. delta is 0 for events that carry
// only an error (a staging write settling after its item was counted).
func (a *aggregator) Report(delta int, name string, itemErr *ItemError) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.processed += delta
	if name != "" {
		a.currentName = name
	}
	if itemErr != nil {
		a.newErrors = append(a.newErrors, *itemErr)
	}
	a.pending = true
	if a.timer == nil {
		a.timer = time.AfterFunc(a.interval, a.timerFired)
	}
}

func (a *aggregator) timerFired() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.timer = nil
	a.flushLocked()
}

// Flush synchronously drains any buffered events and disarms the timer.
func (a *aggregator) Flush() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopTimerLocked()
	a.flushLocked()
}

// Discard drops buffered events without emitting, used when the session
// is being torn down by cancellation.
func (a *aggregator) Discard() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopTimerLocked()
	a.pending = false
	a.newErrors = nil
}

func (a *aggregator) flushLocked() {
	if !a.pending {
		return
	}
	update := Update{
		Processed:   a.processed,
		Total:       a.total,
		CurrentName: a.currentName,
		Errors:      a.newErrors,
	}
	a.pending = false
	a.newErrors = nil
	a.emit(update)
}

// Counts reports the cumulative processed count, total, and the most
// recent item name.
func (a *aggregator) Counts() (processed, total int, currentName string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.processed, a.total, a.currentName
}

func (a *aggregator) stopTimerLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
