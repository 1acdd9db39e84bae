package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kailas-cloud/concord/internal/domain/criterion"
	"github.com/kailas-cloud/concord/internal/domain/outcome"
	"github.com/kailas-cloud/concord/internal/domain/ranking"
	"github.com/kailas-cloud/concord/internal/export"
	"github.com/kailas-cloud/concord/internal/stream"
	searchuc "github.com/kailas-cloud/concord/internal/usecase/search"
)

// criterionReport is the selected solution of one criterion with its stats.
type criterionReport struct {
	Kind      criterion.Kind       `json:"kind"`
	Label     string               `json:"label"`
	Objective float64              `json:"objective"`
	Solutions int                  `json:"solutions"`
	Order     []ranking.Item       `json:"order"`
	Stats     []outcome.ExpertStat `json:"stats"`
}

// outcomeReport is what search and show print.
type outcomeReport struct {
	ID            string            `json:"id"`
	SavedAt       *time.Time        `json:"saved_at,omitempty"`
	ExecutionTime float64           `json:"execution_time_sec"`
	Criteria      []criterionReport `json:"criteria"`
}

// selectorFor loads an outcome into a fresh store and selector.
func selectorFor(o *outcome.Outcome) *searchuc.Selector {
	st := searchuc.NewStore()
	st.Apply(stream.Result{Outcome: o})
	return searchuc.NewSelector(st)
}

func buildReport(id string, o *outcome.Outcome, sel *searchuc.Selector) (outcomeReport, error) {
	rep := outcomeReport{ID: id, ExecutionTime: o.ExecutionTime.Seconds()}
	for _, k := range o.Kinds() {
		res, _ := o.Result(k)
		cr := criterionReport{Kind: k, Label: k.Label(), Objective: res.Objective, Solutions: len(res.Solutions)}
		if len(res.Solutions) > 0 {
			sol, err := sel.Solution(k)
			if err != nil {
				return outcomeReport{}, err
			}
			stats, err := sel.Recompute(k)
			if err != nil {
				return outcomeReport{}, err
			}
			cr.Order, cr.Stats = sol.Items, stats
		}
		rep.Criteria = append(rep.Criteria, cr)
	}
	return rep, nil
}

func printReport(w io.Writer, rep outcomeReport, asJSON bool) error {
	if asJSON {
		return printJSON(w, rep)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Search %s (engine time %.2fs)\n", rep.ID, rep.ExecutionTime)
	for _, cr := range rep.Criteria {
		fmt.Fprintf(tw, "\n%s\tobjective %s\t%d solution(s)\n",
			cr.Label, strconv.FormatFloat(cr.Objective, 'f', -1, 64), cr.Solutions)
		fmt.Fprintf(tw, "  ranking:\t%s\n", formatItems(cr.Order))
		for _, st := range cr.Stats {
			fmt.Fprintf(tw, "  %s\tdistance %d\tcompetence %.4f\n", st.Expert, st.Distance, st.Competence)
		}
	}
	return tw.Flush()
}

func formatItems(items []ranking.Item) string {
	parts := make([]string, len(items))
	for i, it := range items {
		if it.Name != "" {
			parts[i] = it.Name
		} else {
			parts[i] = string(it.ID)
		}
	}
	return strings.Join(parts, " > ")
}

// writeConsensusFile exports the selected solution of kind to path.
// An empty path writes export.FileName into the working directory.
func writeConsensusFile(path string, o *outcome.Outcome, sel *searchuc.Selector, kind criterion.Kind) (string, error) {
	sol, err := sel.Solution(kind)
	if err != nil {
		return "", err
	}
	stats, err := sel.Recompute(kind)
	if err != nil {
		return "", err
	}
	if path == "" {
		path = export.FileName(time.Now())
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := export.Consensus(f, export.Report{Outcome: o, Kind: kind, Solution: sol, Stats: stats}); err != nil {
		return "", err
	}
	return path, f.Close()
}
