package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kurobon/gitgraph/internal/graph"
)

func newRefsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs",
		Short: "List branches, remote branches and tags",
		Long: `List the refs that seed the commit graph together with the commit they
point at. Annotated tags are shown with the commit they peel to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, err := opts.openRepository()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			refs, err := repo.ListRefs(ctx)
			if err != nil {
				return err
			}
			head, err := repo.CurrentHead(ctx)
			if err != nil {
				return err
			}

			if len(refs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No refs yet")
				return nil
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Ref", "Kind", "Commit", "Head")
			for _, ref := range refs {
				marker := ""
				if head.Attached && head.TargetRefName == ref.Name {
					marker = "*"
				}
				if err := table.Append(ref.Name, ref.Kind.String(), graph.ShortID(ref.TargetID), marker); err != nil {
					return err
				}
			}
			if err := table.Render(); err != nil {
				return err
			}

			if !head.Attached && head.TargetID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "HEAD detached at %s\n", graph.ShortID(head.TargetID))
			}
			return nil
		},
	}
	return cmd
}
