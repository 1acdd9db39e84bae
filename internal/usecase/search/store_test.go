package search

import (
	"testing"

	"github.com/kailas-cloud/concord/internal/stream"
)

func TestStore_Apply(t *testing.T) {
	s := NewStore()
	s.Apply(stream.Start{Total: 720})
	s.Apply(stream.Progress{Percent: 40, Current: 288})
	s.Apply(stream.Log{Message: "first"})
	s.Apply(stream.Log{Message: "second"})

	if s.Total() != 720 {
		t.Errorf("Total() = %d, want 720", s.Total())
	}
	if s.Progress() != 40 || s.Current() != 288 {
		t.Errorf("Progress() = %d, Current() = %d", s.Progress(), s.Current())
	}
	if logs := s.Logs(); len(logs) != 2 || logs[0] != "first" || logs[1] != "second" {
		t.Errorf("Logs() = %v", logs)
	}
	if s.Outcome() != nil || s.Done() {
		t.Error("no outcome expected before result")
	}

	o := sampleOutcome()
	s.Apply(stream.Result{Outcome: o})
	if s.Outcome() != o || !s.Done() {
		t.Error("outcome not recorded")
	}
}

func TestStore_StartRecordsTotalOnly(t *testing.T) {
	s := NewStore()
	s.Apply(stream.Progress{Percent: 10, Current: 5})
	s.Apply(stream.Start{Total: 24})
	if s.Progress() != 10 || s.Current() != 5 {
		t.Errorf("start must not reset progress, got %d/%d", s.Progress(), s.Current())
	}
}

func TestStore_ProgressNotMonotonic(t *testing.T) {
	s := NewStore()
	s.Apply(stream.Progress{Percent: 70})
	s.Apply(stream.Progress{Percent: 30})
	if s.Progress() != 30 {
		t.Errorf("Progress() = %d, want 30", s.Progress())
	}
}

func TestStore_SecondResultReplaces(t *testing.T) {
	s := NewStore()
	first, second := sampleOutcome(), sampleOutcome()
	s.Apply(stream.Result{Outcome: first})
	s.Apply(stream.Result{Outcome: second})
	if s.Outcome() != second {
		t.Error("second result must replace the first")
	}
}

func TestStore_LogsAreCopied(t *testing.T) {
	s := NewStore()
	s.Apply(stream.Log{Message: "kept"})
	logs := s.Logs()
	logs[0] = "changed"
	snap := s.Snapshot()
	snap.Logs[0] = "changed"
	if s.Logs()[0] != "kept" {
		t.Error("Logs and Snapshot must return copies")
	}
}

func TestStore_Reset(t *testing.T) {
	s := NewStore()
	s.Apply(stream.Start{Total: 6})
	s.Apply(stream.Log{Message: "x"})
	s.Apply(stream.Result{Outcome: sampleOutcome()})
	s.Reset()

	snap := s.Snapshot()
	if snap.Total != 0 || snap.Progress != 0 || len(snap.Logs) != 0 || snap.Outcome != nil || snap.Done {
		t.Errorf("state after Reset = %+v", snap)
	}
}
