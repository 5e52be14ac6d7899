package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zoobzio/actionz/internal/demo"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr            string
		shutdownTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the demo JSON lookup backend",
		Example: "  actionz serve --addr :8080",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			return serve(ctx, a.logger, ln, shutdownTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "Grace period for in-flight requests")
	return cmd
}

// serve runs the demo backend on ln until ctx is done, then shuts down
// gracefully.
func serve(ctx context.Context, logger *zap.Logger, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           demo.New(demo.DefaultWords, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("demo backend listening", zap.String("addr", ln.Addr().String()))
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown error", zap.Error(err))
		return err
	}
	<-errc
	return nil
}
