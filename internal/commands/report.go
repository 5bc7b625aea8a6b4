package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/housesplit/internal/cli"
	"github.com/mmynk/housesplit/internal/config"
	"github.com/mmynk/housesplit/internal/models"
	"github.com/mmynk/housesplit/internal/service"
	"github.com/mmynk/housesplit/internal/storage"
	"github.com/mmynk/housesplit/internal/storage/sqlite"
)

func newReportCommand(opts *options) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print balances, transfers and net balances for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolvePeriod(period)
			if err != nil {
				return err
			}
			return runReport(cmd.Context(), cmd.OutOrStdout(), opts.cfg, p)
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "", "month in YYYY-MM form (default: current month)")
	return cmd
}

func runReport(ctx context.Context, w io.Writer, cfg config.Config, period models.Period) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	return renderReport(ctx, w, store, cfg, period)
}

// renderReport takes a fresh snapshot of period and writes the rendered report to w.
func renderReport(ctx context.Context, w io.Writer, store storage.Store, cfg config.Config, period models.Period) error {
	household := cfg.Household()
	report, err := service.LoadReport(ctx, store, models.MemberIDs(household), period)
	if err != nil {
		return err
	}

	names := make(map[models.MemberID]string, len(household))
	for _, m := range household {
		names[m.ID] = m.Name
	}
	_, err = fmt.Fprint(w, cli.RenderReport(report, names))
	return err
}

func resolvePeriod(s string) (models.Period, error) {
	if s == "" {
		return models.PeriodOf(time.Now()), nil
	}
	return models.ParsePeriod(s)
}
