package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/pkg/shelf"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize shelf storage",
		Long: "Create the configuration and data directories, write a default config.yaml,\n" +
			"and create the project database so that later runs use it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The config directory and config.yaml already exist after setup.
			dbPath, err := shelf.InitDatabase(a.storeConfig())
			if err != nil {
				return sysError(fmt.Errorf("initialize storage: %w", err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Shelf initialized successfully")
			fmt.Fprintln(out, "  config:  ", filepath.Join(a.configDir, configFileExt))
			fmt.Fprintln(out, "  database:", dbPath)
			return nil
		},
	}
}
