package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"sliceviewer/pkg/config"
	"sliceviewer/pkg/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(opts *options, cfg *config.Config) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the slice views over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.Server.Addr
			}
			img, err := opts.load(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			srv, err := server.New(opts.input, img, zoomSettings(cfg), logger)
			if err != nil {
				return err
			}
			return listen(ctx, &http.Server{
				Addr:              addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

// listen serves until ctx is cancelled, then shuts hs down.
func listen(ctx context.Context, hs *http.Server) error {
	logger := loggerFromContext(ctx)
	errc := make(chan error, 1)
	go func() {
		logger.Info("Serving slices", "addr", hs.Addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
