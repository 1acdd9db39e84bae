package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/concord/internal/version"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	env        string
	configPath string
	jsonOutput bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "concord",
		Short: "Consensus ranking client",
		Long: `Concord collects expert rankings, runs consensus searches on the
ranking engine and explains the result: tied optimal orderings per
criterion with each expert's distance and competence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.env, "env", "", "Environment name (default: $ENV or local)")
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (overrides --env lookup)")
	root.PersistentFlags().BoolVarP(&flags.jsonOutput, "json", "j", false, "Output as JSON")

	root.AddCommand(
		newServeCmd(flags),
		newSearchCmd(flags),
		newMatrixCmd(flags),
		newShowCmd(flags),
		newVersionCmd(flags),
	)
	return root
}

func newVersionCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"version": version.Version,
					"commit":  version.Commit,
					"date":    version.Date,
				})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "concord %s (%s, %s)\n",
				version.Version, version.Commit, version.Date)
			return err
		},
	}
}
