// Package main implements the SSH server that serves the Cozy Knits Co. TUI.
package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/thomas/knits-terminal-go/internal/tui"
)

var (
	configPath string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "knitssh",
	Short: "Cozy Knits Co. sweater shop in your terminal",
	Long: `knitssh serves the Cozy Knits Co. storefront as a terminal UI.

Run "knitssh serve" to accept SSH connections, or "knitssh local" to shop
in the current terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the shop over SSH",
	Long: `Starts the SSH server. Customers connect with

  ssh -p 23234 localhost
  ssh -p 23234 localhost product 3   # open a sweater directly

Their carts are saved per public key.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		a, err := newApp(cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		return runServe(a)
	},
}

var localCmd = &cobra.Command{
	Use:   "local [product-id]",
	Short: "Shop in the current terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		// The TUI owns the terminal, so logs go to a file or nowhere.
		var out io.Writer = io.Discard
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("opening log file: %w", err)
			}
			defer f.Close()
			out = f
		}

		a, err := newApp(cfg, out)
		if err != nil {
			return err
		}
		defer a.Close()

		var extra []tui.Option
		if len(args) == 1 {
			id, ok := parseStartProduct([]string{"product", args[0]})
			if !ok {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			extra = append(extra, tui.WithStartProduct(id))
		}

		model, release := a.newModel(localNamespace, a.logger, extra...)
		_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
		release()
		return err
	},
}

// localNamespace holds the cart of the local terminal user.
const localNamespace = "local"

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (defaults to $KNITS_CONFIG)")
	localCmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")

	rootCmd.AddCommand(serveCmd, localCmd)
}

func main() {
	exitOnError(rootCmd.Execute())
}
