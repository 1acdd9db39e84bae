package concord

import (
	"context"

	"github.com/kailas-cloud/concord/internal/domain/criterion"
	"github.com/kailas-cloud/concord/internal/domain/outcome"
	"github.com/kailas-cloud/concord/internal/domain/ranking"
	"github.com/kailas-cloud/concord/internal/repository/archive"
	healthuc "github.com/kailas-cloud/concord/internal/usecase/health"
	searchuc "github.com/kailas-cloud/concord/internal/usecase/search"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	runFn func(ctx context.Context, req searchuc.Request, sink searchuc.Sink) (searchuc.Summary, error)
}

func (m *mockSearchUC) Run(ctx context.Context, req searchuc.Request, sink searchuc.Sink) (searchuc.Summary, error) {
	return m.runFn(ctx, req, sink)
}

// --- archiveUseCase mock ---

type mockArchiveUC struct {
	getFn  func(ctx context.Context, id string) (archive.Entry, error)
	listFn func(ctx context.Context) ([]string, error)
}

func (m *mockArchiveUC) Get(ctx context.Context, id string) (archive.Entry, error) {
	return m.getFn(ctx, id)
}

func (m *mockArchiveUC) List(ctx context.Context) ([]string, error) {
	return m.listFn(ctx)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

func testOutcome() *outcome.Outcome {
	return &outcome.Outcome{
		Criteria: map[criterion.Kind]outcome.CriterionResult{
			criterion.SumRank: {Kind: criterion.SumRank, Objective: 4, Solutions: []outcome.Solution{{
				Items:     []ranking.Item{{ID: "1", Name: "Mercedes"}, {ID: "2", Name: "Ferrari"}, {ID: "3", Name: "McLaren"}},
				Distances: []int{0, 2, 2},
			}}},
			criterion.SumHamming: {Kind: criterion.SumHamming, Objective: 2, Solutions: []outcome.Solution{
				{Items: []ranking.Item{{ID: "1"}, {ID: "2"}, {ID: "3"}}, Distances: []int{0, 1, 1}},
				{Items: []ranking.Item{{ID: "2"}, {ID: "1"}, {ID: "3"}}, Distances: []int{1, 0, 2}},
			}},
		},
		Experts: []outcome.Expert{
			{Name: "A", Weight: 1, Order: ranking.Ordering{"1", "2", "3"}},
			{Name: "B", Weight: 1, Order: ranking.Ordering{"2", "1", "3"}},
			{Name: "C", Weight: 1, Order: ranking.Ordering{"1", "3", "2"}},
		},
	}
}
