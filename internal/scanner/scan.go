package scanner

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"purchaseScope/internal/chain"
	"purchaseScope/internal/config"
	"purchaseScope/internal/contract"
	"purchaseScope/internal/model"
)

// networkScan is the state both traversals share: one network descriptor, its
// client, the decoder, and the logger.
type networkScan struct {
	network config.Network
	client  chain.Client
	decoder *contract.PurchaseDecoder
	logger  *zap.Logger
}

// topics builds the positional topic filter: topic0 pins the Purchase event,
// and a non-nil receiver is pushed down as an exact match on topic 2.
func (s networkScan) topics(receiver *common.Address) [][]common.Hash {
	topics := [][]common.Hash{{s.decoder.EventID()}}
	if receiver != nil {
		topics = append(topics, nil, []common.Hash{contract.ReceiverTopic(*receiver)})
	}
	return topics
}

// decodeInto appends the decoded logs to events, skipping duplicates and
// undecodable logs. Dedupe is scoped to one scan via the caller-owned seen
// set, keyed block:txhash:logindex.
func (s networkScan) decodeInto(events []model.PurchaseEvent, logs []types.Log, seen map[string]struct{}) []model.PurchaseEvent {
	for _, lg := range logs {
		id := fmt.Sprintf("%d:%s:%d", lg.BlockNumber, lg.TxHash.Hex(), lg.Index)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		event, err := s.decoder.Decode(s.network, lg)
		if err != nil {
			decodeErr := &model.DecodeError{
				ChainID:     s.network.ChainID,
				BlockNumber: lg.BlockNumber,
				TxHash:      lg.TxHash.Hex(),
				LogIndex:    uint64(lg.Index),
				Reason:      err,
			}
			s.logger.Warn("skip undecodable log", zap.String("network", s.network.Key), zap.Error(decodeErr))
			continue
		}

		events = append(events, event)
	}
	return events
}
