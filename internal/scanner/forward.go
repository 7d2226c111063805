package scanner

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"purchaseScope/internal/chain"
	"purchaseScope/internal/config"
	"purchaseScope/internal/contract"
	"purchaseScope/internal/model"
)

// ForwardScanner walks a network's full purchase history from the contract
// deployment block up to the chain head.
type ForwardScanner struct {
	networkScan
}

// NewForwardScanner builds a forward scanner for one network.
func NewForwardScanner(network config.Network, client chain.Client, decoder *contract.PurchaseDecoder, logger *zap.Logger) *ForwardScanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForwardScanner{networkScan{
		network: network,
		client:  client,
		decoder: decoder,
		logger:  logger,
	}}
}

// Scan returns every purchase event on the network in ascending block order.
// A non-nil receiver narrows the query server-side to purchases credited to
// that address. The chain head is read once at the start; blocks arriving
// during the scan are left for the next run. The first chunk failure aborts
// the scan with that error.
func (s *ForwardScanner) Scan(ctx context.Context, receiver *common.Address) ([]model.PurchaseEvent, error) {
	head, err := s.client.LatestBlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("get latest block: %w", err)
	}
	if head < s.network.StartBlock {
		s.logger.Info("nothing to scan",
			zap.String("network", s.network.Key),
			zap.Uint64("head", head),
			zap.Uint64("start_block", s.network.StartBlock))
		return []model.PurchaseEvent{}, nil
	}

	events := make([]model.PurchaseEvent, 0)
	seen := make(map[string]struct{})

	for _, blockRange := range ForwardRanges(s.network.StartBlock, head) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		s.logger.Info("fetch purchase logs",
			zap.String("network", s.network.Key),
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To))

		logs, err := s.client.FilterLogs(ctx, blockRange.From, blockRange.To,
			[]common.Address{s.network.Address()}, s.topics(receiver))
		if err != nil {
			return nil, fmt.Errorf("filter logs %d-%d: %w", blockRange.From, blockRange.To, err)
		}

		events = s.decodeInto(events, logs, seen)
	}

	s.logger.Info("forward scan complete",
		zap.String("network", s.network.Key),
		zap.Int("events", len(events)),
		zap.Uint64("head", head))
	return events, nil
}
