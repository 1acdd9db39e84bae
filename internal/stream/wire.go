package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kailas-cloud/concord/internal/domain/criterion"
	"github.com/kailas-cloud/concord/internal/domain/outcome"
	"github.com/kailas-cloud/concord/internal/domain/ranking"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var errNoSolutions = errors.New("result carries no solutions")

type wireHeader struct {
	Type Type `json:"type"`
}

type wireStart struct {
	Total *int64 `json:"total" validate:"required,min=0"`
}

type wireProgress struct {
	Percent *int  `json:"percent" validate:"required,min=0,max=100"`
	Current int64 `json:"current"`
}

type wireLog struct {
	Message *string `json:"message" validate:"required"`
}

type wireStat struct {
	ExpertName  string  `json:"expert_name"`
	InputWeight float64 `json:"input_weight"`
	DRank       *int    `json:"d_rank"`
	Distance    *int    `json:"distance"`
	Competence  float64 `json:"calculated_competence"`
}

type wireSolution struct {
	Order       []ranking.Item `json:"order" validate:"required,min=1"`
	Distances   []int          `json:"distances"`
	ExpertStats []wireStat     `json:"expert_stats"`
}

type wireInput struct {
	Name       string         `json:"name"`
	ExpertName string         `json:"expert_name"`
	Weight     float64        `json:"weight"`
	Order      []ranking.Item `json:"order" validate:"required"`
}

// wireResult keys match case-insensitively (encoding/json), so both
// "k1_rank" and "K1_rank" revisions decode.
type wireResult struct {
	K1Rank        []wireSolution     `json:"k1_rank" validate:"omitempty,dive"`
	K2Rank        []wireSolution     `json:"k2_rank" validate:"omitempty,dive"`
	K1Hamming     []wireSolution     `json:"k1_hamming" validate:"omitempty,dive"`
	K2Hamming     []wireSolution     `json:"k2_hamming" validate:"omitempty,dive"`
	Criteria      map[string]float64 `json:"criteria"`
	Inputs        []wireInput        `json:"inputs" validate:"omitempty,dive"`
	ExpertNames   []string           `json:"expert_names"`
	ExecutionTime float64            `json:"execution_time" validate:"min=0"`
}

// parseFrame decodes one frame body into an Event.
func parseFrame(body []byte) (Event, error) {
	var h wireHeader
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	switch h.Type {
	case TypeStart:
		var w wireStart
		if err := decodeValid(body, &w); err != nil {
			return nil, err
		}
		return Start{Total: *w.Total}, nil
	case TypeProgress:
		var w wireProgress
		if err := decodeValid(body, &w); err != nil {
			return nil, err
		}
		return Progress{Percent: *w.Percent, Current: w.Current}, nil
	case TypeLog:
		var w wireLog
		if err := decodeValid(body, &w); err != nil {
			return nil, err
		}
		return Log{Message: *w.Message}, nil
	case TypeResult:
		var w wireResult
		if err := decodeValid(body, &w); err != nil {
			return nil, err
		}
		o, err := w.toOutcome()
		if err != nil {
			return nil, err
		}
		return Result{Outcome: o}, nil
	default:
		return nil, fmt.Errorf("unknown frame type %q", h.Type)
	}
}

func decodeValid(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validate frame: %w", err)
	}
	return nil
}

func (w *wireResult) toOutcome() (*outcome.Outcome, error) {
	objectives := make(map[criterion.Kind]float64, len(w.Criteria))
	for key, v := range w.Criteria {
		k, err := criterion.Parse(key)
		if err != nil {
			continue // extra objective keys are ignored
		}
		objectives[k] = v
	}

	o := &outcome.Outcome{
		Criteria:      make(map[criterion.Kind]outcome.CriterionResult, 4),
		ExpertNames:   w.ExpertNames,
		ExecutionTime: time.Duration(w.ExecutionTime * float64(time.Second)),
	}
	for i, in := range w.Inputs {
		name := in.Name
		if name == "" {
			name = in.ExpertName
		}
		if err := ranking.IDs(in.Order).Validate(); err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		o.Experts = append(o.Experts, outcome.Expert{
			Name:   name,
			Weight: in.Weight,
			Order:  ranking.IDs(in.Order),
		})
	}

	for kind, sols := range map[criterion.Kind][]wireSolution{
		criterion.SumRank:    w.K1Rank,
		criterion.MaxRank:    w.K2Rank,
		criterion.SumHamming: w.K1Hamming,
		criterion.MaxHamming: w.K2Hamming,
	} {
		if len(sols) == 0 {
			continue
		}
		res := outcome.CriterionResult{Kind: kind, Solutions: make([]outcome.Solution, len(sols))}
		for i, s := range sols {
			sol, err := s.toSolution()
			if err != nil {
				return nil, fmt.Errorf("%s solution %d: %w", kind, i, err)
			}
			res.Solutions[i] = sol
		}
		if v, ok := objectives[kind]; ok {
			res.Objective = v
		} else {
			res.Objective = float64(kind.Objective(res.Solutions[0].Distances))
		}
		o.Criteria[kind] = res
	}

	if len(o.Criteria) == 0 {
		return nil, errNoSolutions
	}
	return o, nil
}

func (s *wireSolution) toSolution() (outcome.Solution, error) {
	if err := ranking.IDs(s.Order).Validate(); err != nil {
		return outcome.Solution{}, err
	}
	sol := outcome.Solution{
		Items:     s.Order,
		Distances: s.Distances,
	}
	for _, st := range s.ExpertStats {
		d := 0
		switch {
		case st.Distance != nil:
			d = *st.Distance
		case st.DRank != nil:
			d = *st.DRank
		}
		sol.Stats = append(sol.Stats, outcome.ExpertStat{
			Expert:     st.ExpertName,
			Weight:     st.InputWeight,
			Distance:   d,
			Competence: st.Competence,
		})
	}
	return sol, nil
}
