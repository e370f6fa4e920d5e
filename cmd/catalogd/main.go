// Package main implements the catalog HTTP service the SSH shop can read
// products from.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/thomas/knits-terminal-go/internal/catalog"
	"github.com/thomas/knits-terminal-go/internal/catalogapi"
)

var (
	addr        string
	catalogPath string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "catalogd",
	Short: "Serve the sweater catalog over HTTP",
	Long: `catalogd serves the product catalog as JSON:

  GET /api/v1/products?category=&search=&sort=
  GET /api/v1/products/:id
  GET /api/v1/categories
  GET /healthz
  GET /metrics

By default it serves the built-in catalog. Pass --catalog to serve a JSON
file with the same layout instead.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "catalogd",
			Level:           level,
		})

		provider, err := loadProvider(catalogPath)
		if err != nil {
			return err
		}
		return serve(addr, provider, logger)
	},
}

// loadProvider returns the built-in catalog, or the one in path.
func loadProvider(path string) (catalog.Provider, error) {
	if path == "" {
		return catalog.EmbeddedProvider, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	c, err := catalog.Parse(data)
	if err != nil {
		return nil, err
	}

	return catalog.ProviderFunc(func(context.Context) (*catalog.Catalog, error) {
		return c, nil
	}), nil
}

func serve(addr string, provider catalog.Provider, logger *log.Logger) error {
	gin.SetMode(gin.ReleaseMode)

	srv := &http.Server{
		Addr:              addr,
		Handler:           catalogapi.NewRouter(provider, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("catalog service listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-done:
	case err := <-serveErr:
		return err
	}
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", getEnv("CATALOGD_ADDR", ":18080"), "listen address")
	rootCmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog JSON file (defaults to the built-in catalog)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", getEnv("LOG_LEVEL", "info"), "log level")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
