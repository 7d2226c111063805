package scanner

import (
	"context"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"purchaseScope/internal/chain"
	"purchaseScope/internal/config"
	"purchaseScope/internal/contract"
	"purchaseScope/internal/model"
)

// ReverseScanner walks a network's purchase history backwards from the chain
// head so recent events surface without replaying the whole chain.
type ReverseScanner struct {
	networkScan
}

// NewReverseScanner builds a reverse scanner for one network.
func NewReverseScanner(network config.Network, client chain.Client, decoder *contract.PurchaseDecoder, logger *zap.Logger) *ReverseScanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReverseScanner{networkScan{
		network: network,
		client:  client,
		decoder: decoder,
		logger:  logger,
	}}
}

// ScanLatest returns the network's most recent purchase events in descending
// block order (ties broken by descending log index). A positive limit stops
// the walk as soon as that many events are collected and truncates the
// result; limit <= 0 walks back to the deployment block and returns
// everything. A non-nil receiver narrows the query server-side.
func (s *ReverseScanner) ScanLatest(ctx context.Context, limit int, receiver *common.Address) ([]model.PurchaseEvent, error) {
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

	for _, blockRange := range ReverseRanges(head, s.network.StartBlock) {
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

		if limit > 0 && len(events) >= limit {
			break
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].BlockNumber != events[j].BlockNumber {
			return events[i].BlockNumber > events[j].BlockNumber
		}
		return events[i].LogIndex > events[j].LogIndex
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}

	s.logger.Info("reverse scan complete",
		zap.String("network", s.network.Key),
		zap.Int("events", len(events)),
		zap.Uint64("head", head))
	return events, nil
}
