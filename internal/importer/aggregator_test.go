package importer

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type updateSink struct {
	mu      sync.Mutex
	updates []Update
}

func (s *updateSink) emit(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, u)
}

func (s *updateSink) snapshot() []Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Update, len(s.updates))
	copy(out, s.updates)
	return out
}

func TestAggregatorCollapsesBurstIntoOneUpdate(t *testing.T) {
	sink := &updateSink{}
	agg := newAggregator(time.Hour, sink.emit)
	agg.Reset(10)

	for i := 0; i < 7; i++ {
		agg.Report(1, "item", nil)
	}
	if got := sink.snapshot(); len(got) != 0 {
		t.Fatalf("updates before flush = %d, want 0", len(got))
	}

	agg.Flush()
	got := sink.snapshot()
	if len(got) != 1 {
		t.Fatalf("updates = %d, want exactly 1", len(got))
	}
	if got[0].Processed != 7 || got[0].Total != 10 {
		t.Errorf("update = %+v, want processed 7 of 10", got[0])
	}
}

func TestAggregatorProcessedIsMonotonic(t *testing.T) {
	sink := &updateSink{}
	agg := newAggregator(time.Hour, sink.emit)
	agg.Reset(6)

	agg.Report(1, "a", nil)
	agg.Report(1, "b", nil)
	agg.Flush()
	agg.Report(1, "c", nil)
	agg.Flush()

	got := sink.snapshot()
	if len(got) != 2 {
		t.Fatalf("updates = %d, want 2", len(got))
	}
	if got[0].Processed != 2 || got[1].Processed != 3 {
		t.Errorf("processed sequence = %d, %d; want 2 then 3", got[0].Processed, got[1].Processed)
	}
	if got[1].CurrentName != "c" {
		t.Errorf("current name = %q, want c", got[1].CurrentName)
	}
}

func TestAggregatorFlushWithoutReportsEmitsNothing(t *testing.T) {
	sink := &updateSink{}
	agg := newAggregator(time.Hour, sink.emit)
	agg.Reset(3)

	agg.Flush()
	agg.Flush()
	if got := sink.snapshot(); len(got) != 0 {
		t.Fatalf("updates = %d, want 0", len(got))
	}
}

func TestAggregatorCarriesNewErrorsOnly(t *testing.T) {
	sink := &updateSink{}
	agg := newAggregator(time.Hour, sink.emit)
	agg.Reset(4)

	failed := ItemError{Name: "bad.stl", Err: errors.New("decode")}
	agg.Report(1, "bad.stl", &failed)
	agg.Flush()
	agg.Report(1, "good.stl", nil)
	agg.Flush()

	got := sink.snapshot()
	if len(got) != 2 {
		t.Fatalf("updates = %d, want 2", len(got))
	}
	if len(got[0].Errors) != 1 || got[0].Errors[0].Name != "bad.stl" {
		t.Errorf("first update errors = %v, want [bad.stl]", got[0].Errors)
	}
	if len(got[1].Errors) != 0 {
		t.Errorf("second update errors = %v, want none", got[1].Errors)
	}
}

func TestAggregatorTimerFires(t *testing.T) {
	sink := &updateSink{}
	agg := newAggregator(5*time.Millisecond, sink.emit)
	agg.Reset(1)

	agg.Report(1, "item", nil)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(sink.snapshot()) == 1 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timer flush never fired")
}

func TestAggregatorDiscardDropsBufferedEvents(t *testing.T) {
	sink := &updateSink{}
	agg := newAggregator(time.Hour, sink.emit)
	agg.Reset(2)

	agg.Report(1, "item", nil)
	agg.Discard()
	agg.Flush()
	if got := sink.snapshot(); len(got) != 0 {
		t.Fatalf("updates = %d, want 0 after discard", len(got))
	}
}
