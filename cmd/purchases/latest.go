package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"purchaseScope/internal/aggregate"
	"purchaseScope/internal/config"
)

func runLatest(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	rawLimit, _ := cmd.Flags().GetString("limit")
	limit, err := parseLimit(rawLimit)
	if err != nil {
		return err
	}
	receiver, _ := cmd.Flags().GetString("receiver")
	out, _ := cmd.Flags().GetString("out")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clients, closeClients, err := dialClients(ctx, cfg.Networks, logger)
	if err != nil {
		return err
	}
	defer closeClients()

	aggregator, err := aggregate.NewAggregator(cfg.Networks, clients, logger)
	if err != nil {
		return err
	}

	logger.Info("fetch latest purchases",
		zap.Int("networks", len(cfg.Networks)),
		zap.String("limit", rawLimit),
		zap.String("receiver", receiver),
		zap.String("out", out),
	)

	events, err := aggregator.FetchLatest(ctx, limit, receiver)
	if err != nil {
		return err
	}

	if err := newSink(out).WriteEvents(events); err != nil {
		return err
	}

	logger.Info("fetch latest complete", zap.Int("events", len(events)))
	return nil
}

// parseLimit maps the CLI limit onto the aggregator convention: "all" means
// everything (non-positive internally), otherwise a positive count.
func parseLimit(raw string) (int, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "all" {
		return 0, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf(`limit must be a number or "all": %q`, raw)
	}
	if limit <= 0 {
		return 0, fmt.Errorf(`limit must be positive or "all": %q`, raw)
	}
	return limit, nil
}
