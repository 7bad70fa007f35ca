package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/internal/assets"
	"github.com/mesh-intelligence/shelf/internal/server"
	"github.com/mesh-intelligence/shelf/pkg/shelf"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the project catalogue over HTTP",
		Long: "Open the record store (migrating projects.json into the database when the\n" +
			"database is in use), then serve the web page and JSON API until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.v.BindPFlag(cfgKeyListenAddr, cmd.Flags().Lookup("addr")); err != nil {
				return sysError(err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().String("addr", server.DefaultAddr, "listen address (host:port)")
	return cmd
}

// serve runs the HTTP server until ctx is done.
func (a *app) serve(ctx context.Context) error {
	cfg := a.storeConfig()
	store, sel, err := shelf.OpenStore(cfg, a.logger)
	if err != nil {
		return sysError(fmt.Errorf("open store: %w", err))
	}
	defer store.Close()

	images := assets.New(cfg, store, a.logger)
	srv, err := server.NewServer(store, images, a.logger, &server.Config{
		Addr:  a.v.GetString(cfgKeyListenAddr),
		Debug: a.v.GetBool(cfgKeyDebug),
	})
	if err != nil {
		return sysError(err)
	}

	a.logger.Info("shelf ready",
		zap.String("version", shelf.Version),
		zap.String("backend", sel.Backend),
		zap.String("store", sel.Path),
		zap.String("uploads", images.Root()),
		zap.String("addr", srv.Addr()),
	)
	if err := srv.Run(ctx); err != nil {
		return sysError(err)
	}
	return nil
}
