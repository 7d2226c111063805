package aggregate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"purchaseScope/internal/chain"
	"purchaseScope/internal/model"
)

// timestampBatchSize caps how many block header lookups run concurrently
// against one endpoint.
const timestampBatchSize = 20

// AttachTimestamps fills the Timestamp field of every event from its block
// header. Distinct blocks are looked up once, in sequential batches of at
// most timestampBatchSize concurrent requests. A failed lookup is logged and
// substituted with the current wall clock; the export degrades in accuracy
// but never fails here.
func AttachTimestamps(ctx context.Context, client chain.Client, events []model.PurchaseEvent, logger *zap.Logger) []model.PurchaseEvent {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(events) == 0 {
		return events
	}

	blocks := distinctBlocks(events)
	stamps := make(map[uint64]uint64, len(blocks))

	type lookup struct {
		ts  uint64
		err error
	}

	for start := 0; start < len(blocks); start += timestampBatchSize {
		end := start + timestampBatchSize
		if end > len(blocks) {
			end = len(blocks)
		}
		batch := blocks[start:end]
		results := make([]lookup, len(batch))

		var wg sync.WaitGroup
		for i, number := range batch {
			wg.Add(1)
			go func(i int, number uint64) {
				defer wg.Done()
				ts, err := client.BlockTimestamp(ctx, number)
				results[i] = lookup{ts: ts, err: err}
			}(i, number)
		}
		wg.Wait()

		for i, number := range batch {
			if results[i].err != nil {
				logger.Warn("block timestamp lookup failed, using wall clock",
					zap.Uint64("block", number),
					zap.Error(results[i].err))
				stamps[number] = uint64(time.Now().Unix())
				continue
			}
			stamps[number] = results[i].ts
		}
	}

	for i := range events {
		events[i].Timestamp = stamps[events[i].BlockNumber]
	}
	return events
}

// distinctBlocks returns the block numbers of the events, first occurrence
// order, without duplicates.
func distinctBlocks(events []model.PurchaseEvent) []uint64 {
	seen := make(map[uint64]struct{}, len(events))
	blocks := make([]uint64, 0, len(events))
	for _, ev := range events {
		if _, ok := seen[ev.BlockNumber]; ok {
			continue
		}
		seen[ev.BlockNumber] = struct{}{}
		blocks = append(blocks, ev.BlockNumber)
	}
	return blocks
}
