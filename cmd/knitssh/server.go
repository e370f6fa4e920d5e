package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thomas/knits-terminal-go/internal/auth"
	"github.com/thomas/knits-terminal-go/internal/config"
	"github.com/thomas/knits-terminal-go/internal/metrics"
	"github.com/thomas/knits-terminal-go/internal/tui"
)

const shutdownTimeout = 5 * time.Second

func runServe(a *app) error {
	cfg := a.cfg
	logger := a.logger

	if err := ensureHostKey(cfg.SSHHostKeyPath, logger); err != nil {
		return err
	}

	publicKeyHandler, err := newPublicKeyHandler(cfg, logger)
	if err != nil {
		return err
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.SSHAddr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(publicKeyHandler),
		wish.WithPasswordAuth(func(ssh.Context, string) bool {
			return false
		}),
		wish.WithMiddleware(
			bm.Middleware(a.teaHandler),
			activeterm.Middleware(),
			logging.StructuredMiddlewareWithLogger(logger, log.InfoLevel),
		),
	)
	if err != nil {
		return err
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = startMetricsServer(cfg.MetricsAddr, logger)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting SSH server",
		"addr", cfg.SSHAddr,
		"auth", cfg.SSHAuthMode,
		"catalog", cfg.CatalogSource,
	)
	if _, port, err := net.SplitHostPort(cfg.SSHAddr); err == nil {
		logger.Info("connect with: ssh -p " + port + " localhost")
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-done:
	case err := <-serveErr:
		return err
	}
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Error("metrics shutdown", "err", err)
		}
	}
	if err := server.Shutdown(ctx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return err
	}
	return nil
}

// newPublicKeyHandler returns the public key check for the configured
// auth mode. Allowlist mode creates an empty allowlist on first run.
func newPublicKeyHandler(cfg *config.Config, logger *log.Logger) (ssh.PublicKeyHandler, error) {
	if cfg.SSHAuthMode == config.AuthModePublic {
		logger.Warn("running in PUBLIC mode, anyone can connect")
		return func(ssh.Context, ssh.PublicKey) bool {
			return true
		}, nil
	}

	allowlist, err := auth.LoadAllowlist(cfg.AllowlistPath)
	if errors.Is(err, auth.ErrAllowlistNotFound) {
		logger.Info("creating empty allowlist", "path", cfg.AllowlistPath)
		if err := auth.CreateEmptyAllowlist(cfg.AllowlistPath); err != nil {
			return nil, err
		}
		allowlist, err = auth.LoadAllowlist(cfg.AllowlistPath)
	}
	if err != nil {
		return nil, err
	}

	if allowlist.Len() == 0 {
		logger.Warn("allowlist is empty, no connections will be accepted", "path", cfg.AllowlistPath)
	} else {
		logger.Info("loaded allowlist", "keys", allowlist.Len())
	}

	return func(ctx ssh.Context, key ssh.PublicKey) bool {
		ok := allowlist.Contains(key)
		if !ok {
			logger.Debug("rejected public key", "user", ctx.User(), "fingerprint", auth.Fingerprint(key))
		}
		return ok
	}, nil
}

// teaHandler builds the storefront for one SSH session. Carts are keyed by
// the customer's public key fingerprint.
func (a *app) teaHandler(s ssh.Session) (tea.Model, []tea.ProgramOption) {
	fingerprint := auth.Fingerprint(s.PublicKey())
	logger := a.logger.With("session", uuid.NewString(), "user", s.User())

	var extra []tui.Option
	if id, ok := parseStartProduct(s.Command()); ok {
		extra = append(extra, tui.WithStartProduct(id))
	}

	model, release := a.newModel(fingerprint, logger, extra...)
	releaseOnDone(s.Context(), release, metrics.SessionStarted())

	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

func startMetricsServer(addr string, logger *log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "err", err)
		}
	}()

	return srv
}
