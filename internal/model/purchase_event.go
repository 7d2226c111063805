package model

// PurchaseEvent is the normalized representation of one confirmed purchase.
//
// Buyer and Receiver are lowercase 0x-prefixed 20-byte addresses. Amounts are
// exact decimal strings: the raw on-chain integers scaled by 10^-6 (stable
// coin) and 10^-18 (base coin). Identity across networks is the pair
// (ChainID, TxHash); the hash alone is only unique within one chain.
type PurchaseEvent struct {
	ChainID          uint64 `json:"chain_id"`
	NetworkName      string `json:"network"`
	BlockNumber      uint64 `json:"block_number"`
	TxHash           string `json:"tx_hash"`
	LogIndex         uint64 `json:"log_index"`
	Buyer            string `json:"buyer"`
	Receiver         string `json:"receiver"`
	AmountStableCoin string `json:"amount_stable_coin"`
	AmountBaseCoin   string `json:"amount_base_coin"`
	// Timestamp is unix seconds, attached on the latest-events path only.
	// Zero means the timestamp has not been resolved.
	Timestamp uint64 `json:"timestamp,omitempty"`
}

// HasTimestamp reports whether the resolver attached a timestamp.
func (e PurchaseEvent) HasTimestamp() bool {
	return e.Timestamp != 0
}
