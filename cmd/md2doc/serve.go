package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	md2doc "github.com/alnah/go-md2doc"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 30 * time.Second
	mib               = 1 << 20

	defaultMaxUploadMB = 16
)

func newServeCmd(env *Environment, common *commonFlags) *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve conversions over HTTP",
		Long: `Serve starts an HTTP API backed by a pool of converters.

  POST /api/convert   multipart form: file (markdown), format (pdf|docx|html),
                      ascii_mode (image|optimize|preserve). Returns the document
                      as an attachment; diagnostics are in the X-Md2doc-Diagnostics
                      header as JSON.
  GET  /api/health    liveness and pool size.

Logs are JSON lines on stderr.`,
		Example: `  md2doc serve --addr :9000
  MD2DOC_RENDERERS=mmdc,dot md2doc serve -c production`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd.Flags(), common, &f, env, nil)
		},
	}
	addServeFlags(cmd.Flags(), &f)
	return cmd
}

// runServe serves until ctx is cancelled, then shuts down gracefully.
// A non-nil ready receives the bound address once listening.
func runServe(ctx context.Context, fs *flag.FlagSet, common *commonFlags, f *serveFlags, env *Environment, ready chan<- string) error {
	cfg, err := loadConfig(common, env)
	if err != nil {
		return err
	}
	f.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	opts, err := converterOptions(cfg, f.timeout)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if common.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(env.Stderr, &slog.HandlerOptions{Level: level}))

	pool := env.NewPool(md2doc.ResolvePoolSize(cfg.Server.Workers), opts...)
	defer func() {
		if err := pool.Close(); err != nil {
			log.Warn("closing converters", "error", err)
		}
	}()

	maxUpload := int64(cfg.Server.MaxUploadMB) * mib
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadMB * mib
	}
	srv := newServer(pool, log.With("component", "api"), maxUpload, Version)

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
	}
	httpServer := &http.Server{
		Handler:           srv,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()
	log.Info("starting md2doc", "addr", ln.Addr().String(), "workers", pool.Size(), "version", Version)
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// usageArgs wraps a cobra argument validator so its errors map to ExitUsage.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return nil
	}
}
