package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/devpolicy/internal/httpapi"
	"github.com/roach88/devpolicy/internal/metrics"
	"github.com/roach88/devpolicy/internal/resolver"
	"github.com/roach88/devpolicy/internal/settings"
	"github.com/roach88/devpolicy/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen        string
	BootCompleted bool
}

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the policy registry daemon",
		Long: `Run the policy registry with its resolver loop and HTTP endpoint.

On startup the settings store is opened and seeded with the configured
defaults, bindings are resolved from the configured package table, and a
boot_completed event marks the registry ready.

Examples:
  devpolicy serve
  devpolicy serve -c /etc/devpolicy.yaml --listen 127.0.0.1:9464`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&opts.BootCompleted, "boot-completed", true, "mark the registry ready once started")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.RootOptions, cfg.SlogLevel())
	m := metrics.New()

	st, err := openStore(cfg, false, store.WithWriteHook(func(key settings.Key, _ bool) {
		m.SettingWritten(string(key))
	}))
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seeded, err := st.SeedDefaults(ctx, cfg.Settings.Values())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to seed settings", err)
	}
	logger.Info("settings loaded", "database", cfg.Database, "seeded", seeded)

	reg, res := buildRegistry(cfg, st, logger, resolver.WithRecorder(m))
	m.SetReady(reg.Ready())

	handler := httpapi.New(reg, st, m.Handler(), logger, httpapi.WithEvents(res))
	srv := httpapi.NewServer(cfg.Listen, handler.Router())

	if opts.BootCompleted {
		res.Enqueue(resolver.Event{Kind: resolver.KindBootCompleted})
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := res.Run(gctx)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("http listening", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		res.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return WrapExitError(ExitFailure, "serve failed", err)
	}
	return nil
}
