package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"purchaseScope/internal/aggregate"
	"purchaseScope/internal/config"
)

func runAll(cmd *cobra.Command, _ []string) error {
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

	logger.Info("fetch all purchases",
		zap.Int("networks", len(cfg.Networks)),
		zap.String("receiver", receiver),
		zap.String("out", out),
	)

	events, err := aggregator.FetchAllFor(ctx, receiver)
	if err != nil {
		return err
	}

	if err := newSink(out).WriteEvents(events); err != nil {
		return err
	}

	logger.Info("fetch all complete", zap.Int("events", len(events)))
	return nil
}
