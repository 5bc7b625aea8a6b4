package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/housesplit/internal/auth"
	"github.com/mmynk/housesplit/internal/config"
	"github.com/mmynk/housesplit/internal/middleware"
	"github.com/mmynk/housesplit/internal/notify"
	"github.com/mmynk/housesplit/internal/service"
	"github.com/mmynk/housesplit/internal/storage"
	"github.com/mmynk/housesplit/internal/storage/sqlite"
	"github.com/mmynk/housesplit/pkg/api"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the housesplit API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts.cfg)
		},
	}
}

func runServe(ctx context.Context, cfg config.Config) error {
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	ttl, err := cfg.TokenTTL()
	if err != nil {
		return err
	}

	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Storage.DBPath)

	var publisher notify.Publisher = notify.Nop{}
	if cfg.Notify.RedisAddr != "" {
		notifier, err := notify.Dial(ctx, cfg.Notify.RedisAddr, cfg.Notify.Channel)
		if err != nil {
			return err
		}
		defer notifier.Close()
		publisher = notifier
		slog.Info("Publishing changes", "redis", cfg.Notify.RedisAddr, "channel", cfg.Notify.Channel)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := newServerHandler(cfg, store, publisher, auth.NewJWTManager(cfg.Auth.JWTSecret, ttl), reg)

	// h2c serves HTTP/2 without TLS, which Connect clients use.
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Connect server starting", "address", cfg.Server.Addr, "members", len(cfg.Members))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newServerHandler mounts the Connect services, /metrics and /healthz.
func newServerHandler(cfg config.Config, store storage.Store, publisher notify.Publisher, jwtManager *auth.JWTManager, reg *prometheus.Registry) http.Handler {
	household := cfg.Household()
	metrics := middleware.NewMetrics(reg)
	logging := middleware.LoggingInterceptor(slog.Default())

	public := connect.WithInterceptors(metrics.Interceptor(), logging)
	protected := connect.WithInterceptors(
		metrics.Interceptor(),
		middleware.RequireAuth(jwtManager),
		logging,
	)

	authenticator := auth.NewPINAuthenticator(cfg.Credentials())

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(service.NewAuthService(authenticator, jwtManager, slog.Default()), public))
	mux.Handle(api.NewExpenseServiceHandler(service.NewExpenseService(store, household, publisher), protected))
	mux.Handle(api.NewSettlementServiceHandler(service.NewSettlementService(store, household, publisher), protected))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	return corsMiddleware(mux)
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
