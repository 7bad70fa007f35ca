package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func newCreateCmd(a *app) *cobra.Command {
	var in types.ProjectInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a project",
		Example: `  shelf create --name shelf --url https://github.com/mesh-intelligence/shelf
  shelf create --name notes --url http://localhost:3000 --path ~/src/notes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.Validate(); err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			p, err := store.Create(in)
			if err != nil {
				return fmt.Errorf("create project: %w", err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %d: %s\n", p.ID, p.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "project name (required)")
	cmd.Flags().StringVar(&in.URL, "url", "", "project URL (required)")
	cmd.Flags().StringVar(&in.Description, "description", "", "project description")
	cmd.Flags().StringVar(&in.Path, "path", "", "local folder of the project")
	return cmd
}
