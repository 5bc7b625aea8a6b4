package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/housesplit/internal/config"
	"github.com/mmynk/housesplit/internal/models"
	"github.com/mmynk/housesplit/internal/notify"
	"github.com/mmynk/housesplit/internal/storage/sqlite"
)

var errNoRedis = errors.New("notify.redis_addr is required to watch for changes")

func newWatchCommand(opts *options) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render the report whenever expenses or settlements change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolvePeriod(period)
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), cmd.OutOrStdout(), opts.cfg, p)
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "", "month in YYYY-MM form (default: current month)")
	return cmd
}

func runWatch(ctx context.Context, w io.Writer, cfg config.Config, period models.Period) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Notify.RedisAddr == "" {
		return errNoRedis
	}

	store, err := sqlite.New(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	notifier, err := notify.Dial(ctx, cfg.Notify.RedisAddr, cfg.Notify.Channel)
	if err != nil {
		return err
	}
	defer notifier.Close()

	changes, err := notifier.Subscribe(ctx)
	if err != nil {
		return err
	}

	if err := renderReport(ctx, w, store, cfg, period); err != nil {
		return err
	}

	for change := range changes {
		if change.Period != period {
			continue
		}
		slog.Debug("Change received", "kind", change.Kind, "op", change.Op, "id", change.ID)
		if err := renderReport(ctx, w, store, cfg, period); err != nil {
			return err
		}
	}
	return nil
}
