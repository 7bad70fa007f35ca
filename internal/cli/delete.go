package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/internal/assets"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a project and its thumbnail",
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
			if err := store.Delete(id); err != nil {
				return fmt.Errorf("delete project: %w", err)
			}
			if p.Image != "" {
				images := assets.New(a.storeConfig(), store, a.logger)
				if err := images.Release(p.Image); err != nil {
					a.logger.Warn("removing image of deleted project", zap.Int64("id", id), zap.Error(err))
				}
			}

			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{"success": true, "id": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %d\n", id)
			return nil
		},
	}
}
