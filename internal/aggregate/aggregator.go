package aggregate

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"purchaseScope/internal/chain"
	"purchaseScope/internal/config"
	"purchaseScope/internal/contract"
	"purchaseScope/internal/model"
	"purchaseScope/internal/scanner"
)

// Aggregator fans purchase queries out across the configured networks and
// merges the results. A failing network contributes an empty slice; it never
// fails the aggregate.
type Aggregator struct {
	networks []config.Network
	clients  map[string]chain.Client
	decoder  *contract.PurchaseDecoder
	logger   *zap.Logger
}

// NewAggregator wires an aggregator from the resolved network set and one
// client per network key. Clients stay caller-owned; the aggregator never
// closes them.
func NewAggregator(networks []config.Network, clients map[string]chain.Client, logger *zap.Logger) (*Aggregator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(networks) == 0 {
		return nil, fmt.Errorf("no networks configured")
	}
	for _, network := range networks {
		if clients[network.Key] == nil {
			return nil, fmt.Errorf("no client for network %s", network.Key)
		}
	}

	decoder, err := contract.NewPurchaseDecoder()
	if err != nil {
		return nil, err
	}

	return &Aggregator{
		networks: networks,
		clients:  clients,
		decoder:  decoder,
		logger:   logger,
	}, nil
}

// FetchAllFor returns the full purchase history across every network,
// optionally narrowed to one receiver address. Per-network results stay in
// ascending block order and concatenate in registration order; no
// cross-network ordering or timestamps are applied. An empty receiver means
// no filter.
func (a *Aggregator) FetchAllFor(ctx context.Context, receiver string) ([]model.PurchaseEvent, error) {
	receiverAddr, err := parseReceiver(receiver)
	if err != nil {
		return nil, err
	}

	results := make([][]model.PurchaseEvent, len(a.networks))
	var wg sync.WaitGroup
	for i, network := range a.networks {
		wg.Add(1)
		go func(i int, network config.Network) {
			defer wg.Done()
			s := scanner.NewForwardScanner(network, a.clients[network.Key], a.decoder, a.logger)
			events, err := s.Scan(ctx, receiverAddr)
			if err != nil {
				a.logger.Warn("network scan failed, continuing without it",
					zap.String("network", network.Key),
					zap.Error(err))
				results[i] = []model.PurchaseEvent{}
				return
			}
			results[i] = events
		}(i, network)
	}
	wg.Wait()

	return mergeResults(results), nil
}

// FetchLatest returns the most recent purchase events across every network,
// each annotated with its block timestamp, sorted newest first. A positive
// limit caps the merged result; limit <= 0 returns everything. An empty
// receiver means no filter.
func (a *Aggregator) FetchLatest(ctx context.Context, limit int, receiver string) ([]model.PurchaseEvent, error) {
	receiverAddr, err := parseReceiver(receiver)
	if err != nil {
		return nil, err
	}

	results := make([][]model.PurchaseEvent, len(a.networks))
	var wg sync.WaitGroup
	for i, network := range a.networks {
		wg.Add(1)
		go func(i int, network config.Network) {
			defer wg.Done()
			client := a.clients[network.Key]
			s := scanner.NewReverseScanner(network, client, a.decoder, a.logger)
			events, err := s.ScanLatest(ctx, limit, receiverAddr)
			if err != nil {
				a.logger.Warn("network scan failed, continuing without it",
					zap.String("network", network.Key),
					zap.Error(err))
				results[i] = []model.PurchaseEvent{}
				return
			}
			results[i] = AttachTimestamps(ctx, client, events, a.logger)
		}(i, network)
	}
	wg.Wait()

	merged := mergeResults(results)

	// Newest first. A pair with an unresolved timestamp compares equal, so
	// the stable sort keeps its merge order.
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Timestamp == 0 || merged[j].Timestamp == 0 {
			return false
		}
		return merged[i].Timestamp > merged[j].Timestamp
	})
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}

	return merged, nil
}

// mergeResults concatenates the per-network slots in registration order.
func mergeResults(results [][]model.PurchaseEvent) []model.PurchaseEvent {
	merged := make([]model.PurchaseEvent, 0)
	for _, part := range results {
		merged = append(merged, part...)
	}
	return merged
}

// parseReceiver validates the optional receiver argument. Empty means no
// filter; anything else must be a hex address.
func parseReceiver(receiver string) (*common.Address, error) {
	if receiver == "" {
		return nil, nil
	}
	if !common.IsHexAddress(receiver) {
		return nil, fmt.Errorf("receiver %q is not a hex address", receiver)
	}
	addr := common.HexToAddress(receiver)
	return &addr, nil
}
