package scanner

// Public RPC providers reject eth_getLogs queries wider than roughly 50k
// blocks. Forward windows are [from, from+forwardStep]; reverse windows are
// [to-reverseSpan, to].
const (
	forwardStep uint64 = 49_999
	reverseSpan uint64 = 50_000
)

// BlockRange is an inclusive block range.
type BlockRange struct {
	From uint64
	To   uint64
}

// ForwardRanges splits [start, head] into ascending provider-sized windows.
// The union covers the range exactly, without gaps or overlaps. An empty
// slice means there is nothing to scan.
func ForwardRanges(start, head uint64) []BlockRange {
	if head < start {
		return nil
	}

	ranges := make([]BlockRange, 0)
	from := start
	for from <= head {
		to := head
		if head-from > forwardStep {
			to = from + forwardStep
		}
		ranges = append(ranges, BlockRange{From: from, To: to})
		if to == head {
			break
		}
		from = to + 1
	}

	return ranges
}

// ReverseRanges splits [start, head] into descending provider-sized windows,
// newest first. The union covers the range exactly, without gaps or overlaps.
func ReverseRanges(head, start uint64) []BlockRange {
	if head < start {
		return nil
	}

	ranges := make([]BlockRange, 0)
	to := head
	for {
		low := start
		if to > reverseSpan && to-reverseSpan > start {
			low = to - reverseSpan
		}
		ranges = append(ranges, BlockRange{From: low, To: to})
		if low <= start {
			break
		}
		to = low - 1
	}

	return ranges
}
