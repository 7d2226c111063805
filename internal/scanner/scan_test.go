package scanner

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"purchaseScope/internal/config"
	"purchaseScope/internal/contract"
)

var scanNetwork = config.Network{
	Key:             "ethereum",
	ChainID:         1,
	Name:            "Ethereum",
	RPCURL:          "https://ethereum-rpc.publicnode.com",
	ExplorerURL:     "https://etherscan.io",
	ContractAddress: "0x4444444444444444444444444444444444444444",
	StartBlock:      1_000,
}

// stubClient serves canned logs and timestamps, recording every query.
type stubClient struct {
	mu         sync.Mutex
	head       uint64
	logs       []types.Log
	timestamps map[uint64]uint64

	headErr  error
	failFrom map[uint64]error

	headCalls   int
	filterCalls []BlockRange
	tsCalls     int
}

func (c *stubClient) LatestBlockNumber(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headCalls++
	if c.headErr != nil {
		return 0, c.headErr
	}
	return c.head, nil
}

func (c *stubClient) FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topics [][]common.Hash) ([]types.Log, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filterCalls = append(c.filterCalls, BlockRange{From: fromBlock, To: toBlock})
	if err, ok := c.failFrom[fromBlock]; ok {
		return nil, err
	}

	out := make([]types.Log, 0)
	for _, lg := range c.logs {
		if lg.BlockNumber < fromBlock || lg.BlockNumber > toBlock {
			continue
		}
		if !matchesTopics(lg, topics) {
			continue
		}
		out = append(out, lg)
	}
	return out, nil
}

func (c *stubClient) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tsCalls++
	ts, ok := c.timestamps[number]
	if !ok {
		return 0, errors.New("header not found")
	}
	return ts, nil
}

// matchesTopics applies positional topic semantics the way a provider does:
// an empty position matches anything, otherwise any listed value may match.
func matchesTopics(lg types.Log, topics [][]common.Hash) bool {
	for i, accepted := range topics {
		if len(accepted) == 0 {
			continue
		}
		if i >= len(lg.Topics) {
			return false
		}
		match := false
		for _, h := range accepted {
			if lg.Topics[i] == h {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	return true
}

func purchaseLog(t *testing.T, block uint64, index uint, buyer, receiver common.Address, stable, base int64) types.Log {
	t.Helper()

	paymentABI, err := contract.PaymentABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	event := paymentABI.Events["Purchase"]

	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(stable), big.NewInt(base))
	if err != nil {
		t.Fatalf("pack purchase: %v", err)
	}

	return types.Log{
		Address:     scanNetwork.Address(),
		Topics:      []common.Hash{event.ID, common.BytesToHash(buyer.Bytes()), common.BytesToHash(receiver.Bytes())},
		Data:        data,
		BlockNumber: block,
		TxHash:      txHashForLog(block, index),
		Index:       index,
	}
}

func txHashForLog(block uint64, index uint) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(block*1_000 + uint64(index)))
}

func newTestDecoder(t *testing.T) *contract.PurchaseDecoder {
	t.Helper()
	decoder, err := contract.NewPurchaseDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	return decoder
}
