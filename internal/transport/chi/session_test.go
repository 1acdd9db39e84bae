package chi

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/concord/internal/domain"
	"github.com/kailas-cloud/concord/internal/domain/criterion"
	"github.com/kailas-cloud/concord/internal/stream"
	searchuc "github.com/kailas-cloud/concord/internal/usecase/search"
)

// countingSink counts the resets that reach the session.
type countingSink struct {
	*Session
	resets int
}

func (c *countingSink) Reset() {
	c.resets++
	c.Session.Reset()
}

func finishedSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession()
	if err := s.begin("first"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	s.Reset()
	for ev := range stream.NewDecoder(strings.NewReader(streamStart + streamLog + streamResult)).All() {
		s.Apply(ev)
	}
	s.finish(nil)
	if err := s.selector.Select(criterion.SumHamming, 1); err != nil {
		t.Fatalf("select: %v", err)
	}
	return s
}

func TestSession_BeginLeavesResetToSearchLoop(t *testing.T) {
	s := finishedSession(t)

	if err := s.begin("second"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if !s.store.Done() || s.selector.Selected(criterion.SumHamming) != 1 {
		t.Fatal("begin must not touch the store or the selection")
	}

	v, err := s.view()
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if v.ID != "second" || !v.Running || len(v.Criteria) != 0 || len(v.Logs) != 0 || v.Total != 0 {
		t.Errorf("previous search leaked into the new view: %+v", v)
	}
	if _, err := s.selectSolution(criterion.SumHamming, 0); !errors.Is(err, domain.ErrNoOutcome) {
		t.Errorf("selectSolution before reset: expected ErrNoOutcome, got %v", err)
	}
	if _, err := s.report(criterion.SumRank); !errors.Is(err, domain.ErrNoOutcome) {
		t.Errorf("report before reset: expected ErrNoOutcome, got %v", err)
	}
}

func TestSession_SingleResetPerSearch(t *testing.T) {
	s := finishedSession(t)
	sink := &countingSink{Session: s}

	if err := s.begin("second"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	svc := searchuc.New(&fakeEngine{body: streamStart + streamResult}, nil, domain.DefaultSearchLimits())
	_, err := svc.Run(context.Background(), searchuc.Request{ID: "second"}, sink)
	s.finish(err)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if sink.resets != 1 {
		t.Errorf("resets = %d, want 1", sink.resets)
	}
	v, err := s.view()
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if v.Running || len(v.Logs) != 0 || len(v.Criteria) != 2 {
		t.Errorf("view = %+v", v)
	}
	if got := s.selector.Selected(criterion.SumHamming); got != 0 {
		t.Errorf("selection after a new search = %d, want 0", got)
	}
}

func TestSession_FailedStartKeepsPreviousHidden(t *testing.T) {
	s := finishedSession(t)
	if err := s.begin("second"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	s.finish(domain.ErrValidation)

	v, err := s.view()
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if v.Error == "" || len(v.Criteria) != 0 {
		t.Errorf("view = %+v, want error and no criteria", v)
	}
}
