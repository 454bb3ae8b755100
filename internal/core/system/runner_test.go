package system

import (
	"testing"
	"time"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase           { return r.phase }
func (r recorder) Update(_ time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"post-a", PhasePostUpdate, &log})
	r.Register(recorder{"input", PhaseInput, &log})
	r.Register(recorder{"post-b", PhasePostUpdate, &log})

	r.Tick(time.Millisecond)
	want := []string{"input", "post-a", "post-b", "cleanup"}
	if len(log) != len(want) {
		t.Fatalf("ran %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("ran %v, want %v", log, want)
		}
	}
	if r.Ticks() != 1 {
		t.Fatalf("ticks = %d, want 1", r.Ticks())
	}
}

func TestTickPhaseRunsOnlyThatPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"input", PhaseInput, &log})
	r.Register(recorder{"update", PhaseUpdate, &log})

	r.TickPhase(PhaseInput, time.Millisecond)
	if len(log) != 1 || log[0] != "input" {
		t.Fatalf("ran %v, want [input]", log)
	}
	if r.Ticks() != 0 {
		t.Fatal("TickPhase must not count as a full tick")
	}
}

func TestRegisterRejectsUnknownPhase(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	var log []string
	NewRunner().Register(recorder{"bad", Phase(42), &log})
}

func TestPhaseNames(t *testing.T) {
	if PhasePostUpdate.String() != "post-update" || Phase(9).String() != "unknown" {
		t.Fatal("phase names")
	}
}
