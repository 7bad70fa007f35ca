package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			p, ok, err := store.Get(id)
			if err != nil {
				return fmt.Errorf("get project: %w", err)
			}
			if !ok {
				return fmt.Errorf("%w: id %d", types.ErrNotFound, id)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), p)
			}
			return printProject(cmd.OutOrStdout(), p)
		},
	}
}
