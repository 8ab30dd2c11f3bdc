package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/foodsheet/internal/cart"
	"github.com/roach88/foodsheet/internal/catalog"
	"github.com/roach88/foodsheet/internal/config"
	"github.com/roach88/foodsheet/internal/imagehost"
	"github.com/roach88/foodsheet/internal/order"
	"github.com/roach88/foodsheet/internal/session"
	"github.com/roach88/foodsheet/internal/store"
	"github.com/roach88/foodsheet/internal/telemetry"
	"github.com/roach88/foodsheet/internal/web"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen          string
	ShutdownTimeout time.Duration
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ordering HTTP API",
		Long: `Run the HTTP API for ordering, catalog maintenance and order management.

If the database cannot be opened the server still starts, reports
"not_connected" on /health and answers store operations with 503.

Example:
  foodsheet serve --db ./foodsheet.db --listen :8501
  foodsheet serve --config foodsheet.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().DurationVar(&opts.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "grace period for in-flight requests")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
		Writer:      cmd.ErrOrStderr(),
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up tracing", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("error flushing traces", "error", err)
		}
	}()

	// A nil store leaves the services in not-connected mode.
	var (
		catalogStore catalog.Store
		orderStore   order.Store
		orderWriter  cart.OrderWriter
		connected    bool
	)
	st, err := store.Open(cfg.Database)
	if err != nil {
		logger.Error("store unavailable, serving in not-connected mode", "path", cfg.Database, "error", err)
	} else {
		defer func() {
			if err := st.Close(); err != nil {
				logger.Error("error closing database", "error", err)
			}
		}()
		catalogStore, orderStore, orderWriter = st, st, st
		connected = true
		logger.Info("database ready", "path", cfg.Database)
	}

	sessions, err := newSessionManager(ctx, cfg, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start session manager", err)
	}
	defer sessions.Close()

	images, imageDir, err := newImageHost(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up image host", err)
	}

	srv := web.New(web.Options{
		Catalog:        catalog.NewService(catalogStore, logger),
		Orders:         order.NewService(orderStore, logger),
		Checkout:       cart.NewCheckout(orderWriter, cart.WithLogger(logger)),
		Sessions:       sessions,
		Images:         images,
		ImageDir:       imageDir,
		StoreConnected: connected,
		Logger:         logger,
		ServiceName:    cfg.Telemetry.ServiceName,
	})

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}
	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", ln.Addr())
	logger.Info("server starting", "addr", ln.Addr().String(), "session_backend", cfg.Session.Backend,
		"images_backend", cfg.Images.Backend, "store_connected", connected)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}

func newSessionManager(ctx context.Context, cfg config.Config, logger *slog.Logger) (session.Manager, error) {
	scfg := session.Config{TTL: cfg.Session.TTL}
	switch cfg.Session.Backend {
	case config.SessionRedis:
		m, err := session.NewRedisManager(ctx, cfg.Session.RedisURL, scfg)
		if err != nil {
			return nil, err
		}
		logger.Info("sessions in redis")
		return m, nil
	default:
		return session.NewMemoryManager(scfg, logger), nil
	}
}

// newImageHost returns the configured uploader and, for the disk backend,
// the directory to serve.
func newImageHost(cfg config.Config) (imagehost.Uploader, string, error) {
	switch cfg.Images.Backend {
	case config.ImagesCloudinary:
		h, err := imagehost.NewCloudinaryHost(imagehost.CloudinaryConfig{
			CloudName:    cfg.Images.Cloudinary.CloudName,
			UploadPreset: cfg.Images.Cloudinary.UploadPreset,
			Endpoint:     cfg.Images.Cloudinary.Endpoint,
		}, nil)
		if err != nil {
			return nil, "", err
		}
		return h, "", nil
	default:
		h, err := imagehost.NewDiskHost(cfg.Images.Dir, cfg.Images.PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		return h, h.Dir(), nil
	}
}
