package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockEngineChecker struct {
	err error
}

func (m *mockEngineChecker) HealthCheck(_ context.Context) error { return m.err }

type mockSearchState struct {
	running bool
}

func (m *mockSearchState) Running() bool { return m.running }

// --- Tests ---

func TestCheck(t *testing.T) {
	down := errors.New("conn refused")
	tests := []struct {
		name        string
		engine      error
		archive     Pinger
		wantStatus  Status
		wantEngine  CheckResult
		wantArchive CheckResult
	}{
		{"all healthy", nil, &mockPinger{}, Healthy, CheckOK, CheckOK},
		{"archive down", nil, &mockPinger{err: down}, Degraded, CheckOK, CheckError},
		{"engine down", down, &mockPinger{}, Unhealthy, CheckError, CheckOK},
		{"both down", down, &mockPinger{err: down}, Unhealthy, CheckError, CheckError},
		{"no archive", nil, nil, Healthy, CheckOK, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := New(&mockEngineChecker{err: tc.engine}, tc.archive, nil).Check(context.Background())
			if r.Status != tc.wantStatus {
				t.Errorf("status = %q, want %q", r.Status, tc.wantStatus)
			}
			if r.Checks[ComponentEngine] != tc.wantEngine {
				t.Errorf("engine = %q, want %q", r.Checks[ComponentEngine], tc.wantEngine)
			}
			if got := r.Checks[ComponentArchive]; got != tc.wantArchive {
				t.Errorf("archive = %q, want %q", got, tc.wantArchive)
			}
		})
	}
}

func TestCheck_NoArchiveOmitted(t *testing.T) {
	r := New(&mockEngineChecker{}, nil, nil).Check(context.Background())
	if _, ok := r.Checks[ComponentArchive]; ok {
		t.Error("archive check must be absent when archiving is disabled")
	}
}

func TestCheck_SearchState(t *testing.T) {
	tests := []struct {
		name   string
		search SearchState
		want   bool
	}{
		{"no search service", nil, false},
		{"idle", &mockSearchState{}, false},
		{"running", &mockSearchState{running: true}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := New(&mockEngineChecker{}, nil, tc.search).Check(context.Background())
			if r.Searching != tc.want {
				t.Errorf("searching = %v, want %v", r.Searching, tc.want)
			}
			if r.Status != Healthy {
				t.Errorf("status = %q, a running search must not change health", r.Status)
			}
		})
	}
}
