package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/concord/internal/domain"
	"github.com/kailas-cloud/concord/internal/domain/criterion"
	logpkg "github.com/kailas-cloud/concord/internal/logger"
	"github.com/kailas-cloud/concord/internal/stream"
	searchuc "github.com/kailas-cloud/concord/internal/usecase/search"
)

func newSearchCmd(flags *rootFlags) *cobra.Command {
	var (
		weights    []string
		limit      int
		exportPath string
		doExport   bool
		kindFlag   string
		quiet      bool
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a consensus search and print the result",
		Example: `  concord search --weight Alice=1 --weight Bob=2 --limit 6
  concord search --export --criterion k1_hamming`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := parseWeights(weights)
			if err != nil {
				return err
			}
			kind, err := criterion.Parse(kindFlag)
			if err != nil {
				return err
			}

			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := logpkg.ContextWithLogger(cmd.Context(), a.logger)
			if t := a.searchTimeout(); t > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, t)
				defer cancel()
			}

			repo, store, err := a.openArchive(ctx)
			if err != nil {
				return err
			}
			var arch searchuc.Archive
			if repo != nil {
				defer store.Close()
				arch = repo
			}

			sink := newProgressSink(cmd.ErrOrStderr(), quiet || flags.jsonOutput)
			svc := searchuc.New(a.engine(), arch, a.limits())
			sum, err := svc.Run(ctx, searchuc.Request{Weights: w, LimitObjects: limit}, sink)
			sink.done()
			if err != nil {
				var inc *domain.IncompleteError
				if errors.As(err, &inc) {
					return fmt.Errorf("search %s ended early after %d%%: %w", inc.SearchID, sink.store.Progress(), err)
				}
				return err
			}

			sel := searchuc.NewSelector(sink.store)
			rep, err := buildReport(sum.ID, sum.Outcome, sel)
			if err != nil {
				return err
			}
			if err := printReport(cmd.OutOrStdout(), rep, flags.jsonOutput); err != nil {
				return err
			}

			if doExport || exportPath != "" {
				path, err := writeConsensusFile(exportPath, sum.Outcome, sel, kind)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", kind.Label(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&weights, "weight", "w", nil, "Expert weight as name=value (repeatable)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of objects to rank (default from config)")
	cmd.Flags().BoolVar(&doExport, "export", false, "Write the consensus CSV export")
	cmd.Flags().StringVarP(&exportPath, "output", "o", "", "Export file path (implies --export)")
	cmd.Flags().StringVar(&kindFlag, "criterion", string(criterion.SumRank), "Criterion used as the exported ranking")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print progress")
	return cmd
}

// parseWeights reads repeated name=value flags.
func parseWeights(args []string) (map[string]float64, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: weight %q must be name=value", domain.ErrValidation, arg)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: weight %q: %w", domain.ErrValidation, arg, err)
		}
		out[name] = v
	}
	return out, nil
}

// progressSink keeps the search state and renders progress to a terminal.
type progressSink struct {
	mu    sync.Mutex
	w     io.Writer
	quiet bool
	store *searchuc.Store
	dirty bool
}

var _ searchuc.Sink = (*progressSink)(nil)

func newProgressSink(w io.Writer, quiet bool) *progressSink {
	return &progressSink{w: w, quiet: quiet, store: searchuc.NewStore()}
}

func (p *progressSink) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.store.Reset()
}

func (p *progressSink) Apply(ev stream.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.store.Apply(ev)
	if p.quiet {
		return
	}
	switch e := ev.(type) {
	case stream.Progress:
		fmt.Fprintf(p.w, "\rIter: %d / %d (%d%%)", e.Current, p.store.Total(), e.Percent)
		p.dirty = true
	case stream.Log:
		p.newline()
		fmt.Fprintln(p.w, e.Message)
	}
}

func (p *progressSink) done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.newline()
}

func (p *progressSink) newline() {
	if p.dirty {
		fmt.Fprintln(p.w)
		p.dirty = false
	}
}
