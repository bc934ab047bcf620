// Package cli wires the anketa command line: the intake server, a
// questionnaire submitter and a field listing.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "anketa",
		Short:         "Internship questionnaire intake service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("ANKETA_CONFIG"), "path to a YAML config file")

	root.AddCommand(
		newServeCommand(opts),
		newSubmitCommand(),
		newFieldsCommand(),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		cmd.PrintErrln("Error:", err)
		return 1
	}
	return 0
}
