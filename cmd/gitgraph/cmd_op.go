package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kurobon/gitgraph/internal/git"
)

func newOpCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "op <command> [args...]",
		Short: "Run a history operation",
		Long: `Run one of the history operations on the repository: reword, redate,
squash, cherry-pick, revert, log or help.

Examples:
  gitgraph op help
  gitgraph op reword HEAD~1 "Better message"
  gitgraph op redate HEAD 2024-05-01T10:00:00Z
  gitgraph op squash 3 "Combined change"
  gitgraph op cherry-pick feature~2..feature`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, err := opts.openRepository()
			if err != nil {
				return err
			}
			out, err := git.Dispatch(cmd.Context(), repo, args[0], args)
			if err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
	// Everything after the operation name belongs to the operation.
	cmd.Flags().SetInterspersed(false)
	return cmd
}
