package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/calltrack/golang_services/internal/numbers_service/adapters/carrier"
	numbersDomain "github.com/calltrack/golang_services/internal/numbers_service/domain"
	"github.com/calltrack/golang_services/internal/platform/config"
	"github.com/calltrack/golang_services/internal/platform/database"
	"github.com/calltrack/golang_services/internal/platform/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var Version = "dev"

// env is the state every subcommand shares. It is filled by the root command's PersistentPreRunE.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	pool   *pgxpool.Pool
	output string
}

func (e *env) connect(ctx context.Context) error {
	if e.pool != nil {
		return nil
	}
	pool, err := database.NewDBPool(ctx, e.cfg.PostgresDSN, e.logger)
	if err != nil {
		return err
	}
	e.pool = pool
	return nil
}

func (e *env) close() {
	if e.pool != nil {
		e.pool.Close()
	}
}

func (e *env) carrier() numbersDomain.Carrier {
	if e.cfg.IsCarrierTestMode() {
		return carrier.NewMockCarrier(e.logger)
	}
	return carrier.NewRESTCarrier(e.logger, e.cfg.CarrierAPIURL, e.cfg.CarrierAccountSID, e.cfg.CarrierAuthToken,
		&http.Client{Timeout: e.cfg.CarrierHTTPTimeout})
}

func newRootCmd(e *env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "trackctl",
		Short:         "Operator tooling for the call tracking platform",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if e.output != outputJSON && e.output != outputYAML {
				return fmt.Errorf("unsupported output format %q", e.output)
			}
			cfg, err := config.Load("trackctl")
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			e.cfg = cfg
			e.logger = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&e.output, "output", "o", outputJSON, "output format (json, yaml)")

	rootCmd.AddCommand(migrateCmd(e))
	rootCmd.AddCommand(accountCmd(e))
	rootCmd.AddCommand(bankCmd(e))
	return rootCmd
}

func main() {
	e := &env{}
	defer e.close()

	if err := newRootCmd(e).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		e.close()
		os.Exit(1)
	}
}
