package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/concord/internal/domain/criterion"
)

func newShowCmd(flags *rootFlags) *cobra.Command {
	var (
		exportPath string
		doExport   bool
		kindFlag   string
	)
	cmd := &cobra.Command{
		Use:   "show [search-id]",
		Short: "List archived searches or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := criterion.Parse(kindFlag)
			if err != nil {
				return err
			}

			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			repo, store, err := a.openArchive(cmd.Context())
			if err != nil {
				return err
			}
			if repo == nil {
				return errors.New("archive is disabled (archive.driver is none)")
			}
			defer store.Close()

			if len(args) == 0 {
				ids, err := repo.List(cmd.Context())
				if err != nil {
					return err
				}
				if flags.jsonOutput {
					return printJSON(cmd.OutOrStdout(), ids)
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			}

			entry, err := repo.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("show %s: %w", args[0], err)
			}
			sel := selectorFor(entry.Outcome)
			rep, err := buildReport(entry.ID, entry.Outcome, sel)
			if err != nil {
				return err
			}
			saved := entry.SavedAt
			rep.SavedAt = &saved
			if err := printReport(cmd.OutOrStdout(), rep, flags.jsonOutput); err != nil {
				return err
			}

			if doExport || exportPath != "" {
				path, err := writeConsensusFile(exportPath, entry.Outcome, sel, kind)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", kind.Label(), path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&doExport, "export", false, "Write the consensus CSV export")
	cmd.Flags().StringVarP(&exportPath, "output", "o", "", "Export file path (implies --export)")
	cmd.Flags().StringVar(&kindFlag, "criterion", string(criterion.SumRank), "Criterion used as the exported ranking")
	return cmd
}
