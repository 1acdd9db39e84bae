// Package export renders search outcomes and comparison matrices as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/kailas-cloud/concord/internal/domain/criterion"
	"github.com/kailas-cloud/concord/internal/domain/outcome"
)

// bom makes spreadsheet tools detect UTF-8.
const bom = "\uFEFF"

// Report is the content of a consensus export: the experts evaluated
// against one selected solution, every criterion's objective, and the
// selected ranking.
type Report struct {
	Outcome  *outcome.Outcome
	Kind     criterion.Kind
	Solution outcome.Solution
	Stats    []outcome.ExpertStat
}

// Consensus writes a report as semicolon-separated CSV with decimal commas.
func Consensus(w io.Writer, r Report) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	p := message.NewPrinter(language.Ukrainian)

	records := [][]string{{"Expert", "Weight", "Distance", "Competence"}}
	for _, st := range r.Stats {
		records = append(records, []string{
			st.Expert,
			decimal(p, st.Weight),
			strconv.Itoa(st.Distance),
			decimal(p, st.Competence),
		})
	}

	records = append(records, []string{}, []string{"Criterion", "Objective"})
	for _, k := range criterion.All() {
		value := ""
		if res, ok := r.Outcome.Result(k); ok {
			value = decimal(p, res.Objective)
		}
		records = append(records, []string{k.Label(), value})
	}

	records = append(records, []string{}, []string{"Ranking", r.Kind.Label()}, []string{"Rank", "Object"})
	for i, it := range r.Solution.Items {
		name := it.Name
		if name == "" {
			name = string(it.ID)
		}
		records = append(records, []string{strconv.Itoa(i + 1), name})
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write consensus csv: %w", err)
	}
	return nil
}

// FileName returns the download name for a consensus export made at t.
func FileName(t time.Time) string {
	return "consensus_full_" + t.Format(time.DateOnly) + ".csv"
}

func decimal(p *message.Printer, v float64) string {
	return p.Sprint(number.Decimal(v, number.NoSeparator(), number.MaxFractionDigits(6)))
}
