package scanner

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"purchaseScope/internal/model"
)

var (
	buyerA    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	receiverA = common.HexToAddress("0x2222222222222222222222222222222222222222")
	receiverB = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func TestForwardScanFullHistoryAscending(t *testing.T) {
	client := &stubClient{
		head: 121_000,
		logs: []types.Log{
			purchaseLog(t, 121_000, 2, buyerA, receiverA, 5_000_000, 1),
			purchaseLog(t, 1_500, 1, buyerA, receiverA, 123456789, 2),
			purchaseLog(t, 60_000, 0, buyerA, receiverB, 1_000_000, 3),
		},
	}
	s := NewForwardScanner(scanNetwork, client, newTestDecoder(t), nil)

	events, err := s.Scan(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, uint64(1_500), events[0].BlockNumber)
	assert.Equal(t, uint64(60_000), events[1].BlockNumber)
	assert.Equal(t, uint64(121_000), events[2].BlockNumber)
	assert.Equal(t, "123.456789", events[0].AmountStableCoin)
	assert.Zero(t, events[0].Timestamp)

	// The head is read once up front and the chunk layout matches the
	// range splitter output.
	assert.Equal(t, 1, client.headCalls)
	assert.Equal(t, ForwardRanges(scanNetwork.StartBlock, client.head), client.filterCalls)
}

func TestForwardScanReceiverFilterPushdown(t *testing.T) {
	logs := []types.Log{
		purchaseLog(t, 1_200, 0, buyerA, receiverA, 1_000_000, 1),
		purchaseLog(t, 1_300, 0, buyerA, receiverB, 2_000_000, 1),
		purchaseLog(t, 70_000, 1, buyerA, receiverA, 3_000_000, 1),
	}
	decoder := newTestDecoder(t)

	all, err := NewForwardScanner(scanNetwork, &stubClient{head: 80_000, logs: logs}, decoder, nil).
		Scan(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 3)

	filtered := &stubClient{head: 80_000, logs: logs}
	got, err := NewForwardScanner(scanNetwork, filtered, decoder, nil).
		Scan(context.Background(), &receiverA)
	require.NoError(t, err)

	// Filtered scan equals the unfiltered scan narrowed to the receiver.
	want := make([]model.PurchaseEvent, 0)
	for _, ev := range all {
		if ev.Receiver == "0x2222222222222222222222222222222222222222" {
			want = append(want, ev)
		}
	}
	assert.Equal(t, want, got)
	require.Len(t, got, 2)
}

func TestForwardScanChunkErrorAborts(t *testing.T) {
	client := &stubClient{
		head:     121_000,
		failFrom: map[uint64]error{51_000: errors.New("provider unavailable")},
	}
	s := NewForwardScanner(scanNetwork, client, newTestDecoder(t), nil)

	events, err := s.Scan(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filter logs 51000-100999")
	assert.Nil(t, events)
	// No chunk after the failing one is attempted.
	assert.Len(t, client.filterCalls, 2)
}

func TestForwardScanSkipsUndecodableLog(t *testing.T) {
	bad := purchaseLog(t, 2_000, 0, buyerA, receiverA, 1, 1)
	bad.Topics = bad.Topics[:2]

	client := &stubClient{
		head: 3_000,
		logs: []types.Log{
			bad,
			purchaseLog(t, 2_500, 0, buyerA, receiverA, 7_000_000, 1),
		},
	}
	s := NewForwardScanner(scanNetwork, client, newTestDecoder(t), nil)

	events, err := s.Scan(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(2_500), events[0].BlockNumber)
}

func TestForwardScanDeduplicates(t *testing.T) {
	dup := purchaseLog(t, 2_000, 0, buyerA, receiverA, 1_000_000, 1)
	client := &stubClient{head: 2_500, logs: []types.Log{dup, dup}}
	s := NewForwardScanner(scanNetwork, client, newTestDecoder(t), nil)

	events, err := s.Scan(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestForwardScanHeadBelowStart(t *testing.T) {
	client := &stubClient{head: 500}
	s := NewForwardScanner(scanNetwork, client, newTestDecoder(t), nil)

	events, err := s.Scan(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
	assert.Empty(t, client.filterCalls)
}

func TestForwardScanHeadError(t *testing.T) {
	client := &stubClient{headErr: errors.New("rpc down")}
	s := NewForwardScanner(scanNetwork, client, newTestDecoder(t), nil)

	_, err := s.Scan(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get latest block")
}

func TestForwardScanCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &stubClient{head: 2_000}
	s := NewForwardScanner(scanNetwork, client, newTestDecoder(t), nil)

	_, err := s.Scan(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}
