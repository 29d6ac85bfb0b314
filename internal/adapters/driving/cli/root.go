// Package cli implements the lia-sync command line.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
)

// Exit codes returned by the binary.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfig      = 2
	ExitUnavailable = 3
)

var version = "dev"

var (
	configPath string
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "lia-sync",
	Short: "Synchronise a WooCommerce catalog with Google Merchant Center",
	Long: `lia-sync reads published products from a WooCommerce database and keeps
the Merchant Center catalog in step: new and modified products are
uploaded in batches, deleted products are removed, and the outcome of
every item is tracked in the shop database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.lia-sync/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with interrupt handling.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	var cfgErr *domain.ConfigurationError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &cfgErr):
		return ExitConfig
	case errors.Is(err, domain.ErrDatabaseUnavailable), errors.Is(err, domain.ErrRemoteUnavailable):
		return ExitUnavailable
	default:
		return ExitFailure
	}
}
