package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/SscSPs/shop_ledger/internal/core/services"
	"github.com/SscSPs/shop_ledger/internal/middleware"
	"github.com/SscSPs/shop_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/shop_ledger/pkg/database"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.AddCommand(reconcileOpenAllCmd)
	reconcileCmd.AddCommand(reconcileCloseAllCmd)

	reconcileCmd.PersistentFlags().StringP("date", "d", "", "Business day as YYYY-MM-DD (defaults to today, UTC)")
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Open or close the business day for every non-deleted account",
	Long: `Bulk reconciliation for schedulers. Accounts that already have a row for the day
are skipped on open; accounts never opened or already closed are skipped on close.`,
}

var reconcileOpenAllCmd = &cobra.Command{
	Use:   "open-all",
	Short: "Snapshot the opening balance of every non-deleted account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBulkReconcile(cmd, false)
	},
}

var reconcileCloseAllCmd = &cobra.Command{
	Use:   "close-all",
	Short: "Snapshot the closing balance of every opened account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBulkReconcile(cmd, true)
	},
}

func parseBusinessDate(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		u := now.UTC()
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", raw)
	}
	return d, nil
}

func runBulkReconcile(cmd *cobra.Command, closing bool) error {
	raw, _ := cmd.Flags().GetString("date")
	day, err := parseBusinessDate(raw, time.Now())
	if err != nil {
		return err
	}
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = middleware.WithLogger(ctx, logger.With(slog.String("business_date", day.Format(time.DateOnly))))
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		return fail(logger, "Failed to initialize database pool", err)
	}
	defer database.ClosePgxPool(dbPool)

	svc := services.NewServiceContainer(pgsql.NewRepositoryProvider(dbPool)).Reconciliation
	var result *domain.BulkReconciliationResult
	if closing {
		result, err = svc.CloseAll(ctx, day, domain.SystemUserID)
	} else {
		result, err = svc.OpenAll(ctx, day, domain.SystemUserID)
	}
	if err != nil {
		return fail(logger, "Bulk reconciliation failed", err)
	}

	for _, s := range result.Skipped {
		logger.Warn("Account skipped", slog.String("account_id", s.AccountID), slog.String("reason", s.Reason))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d processed, %d skipped\n", day.Format(time.DateOnly), len(result.Processed), len(result.Skipped))
	return nil
}
