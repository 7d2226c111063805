package model

import "fmt"

// DecodeError carries the position of a purchase log that failed to decode,
// so the caller can log it and keep scanning.
type DecodeError struct {
	ChainID     uint64
	BlockNumber uint64
	TxHash      string
	LogIndex    uint64
	Reason      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode purchase log %s (chain %d, block %d, log %d): %v",
		e.TxHash, e.ChainID, e.BlockNumber, e.LogIndex, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Reason
}
