package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// patchFlags lists the flags update accepts, in help order.
var patchFlags = []struct{ name, usage string }{
	{"name", "set project name"},
	{"url", "set project URL"},
	{"description", "set project description"},
	{"path", "set local folder"},
}

func newUpdateCmd(a *app) *cobra.Command {
	values := make(map[string]*string, len(patchFlags))

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a project",
		Long:  "Change the given fields of a project. Fields without a flag keep their value;\nan explicitly empty --description or --path clears it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var patch types.ProjectPatch
			fields := map[string]**string{
				"name":        &patch.Name,
				"url":         &patch.URL,
				"description": &patch.Description,
				"path":        &patch.Path,
			}
			for name, dst := range fields {
				if cmd.Flags().Changed(name) {
					*dst = values[name]
				}
			}
			if patch.IsEmpty() {
				return userError(fmt.Errorf("update: at least one of --name, --url, --description or --path must be provided"))
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			p, err := store.Update(id, patch)
			if err != nil {
				return fmt.Errorf("update project: %w", err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), p)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated project %d\n", p.ID)
			return nil
		},
	}

	for _, f := range patchFlags {
		values[f.name] = cmd.Flags().String(f.name, "", f.usage)
	}
	return cmd
}
