package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"purchaseScope/internal/chain"
	"purchaseScope/internal/config"
	"purchaseScope/internal/export"
)

func main() {
	root := &cobra.Command{
		Use:          "purchases",
		Short:        "Multi-network purchase event aggregator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	allCmd := &cobra.Command{
		Use:   "all",
		Short: "Export the full purchase history across all networks",
		RunE:  runAll,
	}

	allCmd.Flags().String("receiver", "", "only purchases credited to this address")
	allCmd.Flags().String("out", "", "output JSONL path, empty means stdout")
	allCmd.Flags().StringSlice("enabled", []string{"ethereum", "bsc", "polygon"}, "networks to scan (comma-separated)")
	allCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(allCmd)

	latestCmd := &cobra.Command{
		Use:   "latest",
		Short: "Export the most recent purchases across all networks",
		RunE:  runLatest,
	}

	latestCmd.Flags().String("limit", "50", `number of events, or "all"`)
	latestCmd.Flags().String("receiver", "", "only purchases credited to this address")
	latestCmd.Flags().String("out", "", "output JSONL path, empty means stdout")
	latestCmd.Flags().StringSlice("enabled", []string{"ethereum", "bsc", "polygon"}, "networks to scan (comma-separated)")
	latestCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(latestCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// dialClients connects one client per configured network and verifies each
// endpoint against its descriptor's chain id.
func dialClients(ctx context.Context, networks []config.Network, logger *zap.Logger) (map[string]chain.Client, func(), error) {
	clients := make(map[string]chain.Client, len(networks))
	dialed := make([]*chain.RPCClient, 0, len(networks))
	closeAll := func() {
		for _, c := range dialed {
			c.Close()
		}
	}

	for _, network := range networks {
		client, err := chain.Dial(ctx, network.RPCURL)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("connect %s rpc: %w", network.Key, err)
		}
		dialed = append(dialed, client)

		chainID, err := client.ChainID(ctx)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("get %s chain id: %w", network.Key, err)
		}
		if !chainID.IsUint64() || chainID.Uint64() != network.ChainID {
			closeAll()
			return nil, nil, fmt.Errorf("network %s: endpoint reports chain id %s, descriptor says %d",
				network.Key, chainID, network.ChainID)
		}

		logger.Info("network connected",
			zap.String("network", network.Key),
			zap.Uint64("chain_id", network.ChainID),
			zap.Uint64("start_block", network.StartBlock),
		)
		clients[network.Key] = client
	}

	return clients, closeAll, nil
}

func newSink(out string) export.Sink {
	if out == "" {
		return export.NewJSONLWriter(os.Stdout)
	}
	return export.NewJSONLFile(out)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
