package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all projects ordered by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			projects, err := store.List()
			if err != nil {
				return fmt.Errorf("list projects: %w", err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), projects)
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects")
				return nil
			}
			return printProjects(cmd.OutOrStdout(), projects)
		},
	}
}
