package contract

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"

	"purchaseScope/internal/config"
	"purchaseScope/internal/model"
)

// Decimal exponents of the two payment legs. Amounts travel on-chain as raw
// integers; rendering shifts the point by 6 and 18 places exactly.
const (
	stableCoinExp int32 = -6
	baseCoinExp   int32 = -18
)

// PurchaseDecoder decodes Purchase logs emitted by the payment contract.
type PurchaseDecoder struct {
	event      abi.Event
	purchaseID common.Hash
}

// NewPurchaseDecoder builds a decoder from the payment ABI.
func NewPurchaseDecoder() (*PurchaseDecoder, error) {
	paymentABI, err := PaymentABI()
	if err != nil {
		return nil, err
	}

	event, ok := paymentABI.Events["Purchase"]
	if !ok {
		return nil, fmt.Errorf("payment ABI has no Purchase event")
	}

	return &PurchaseDecoder{
		event:      event,
		purchaseID: event.ID,
	}, nil
}

// EventID returns the Purchase event signature hash, used as the topic0
// filter in log queries.
func (d *PurchaseDecoder) EventID() common.Hash {
	return d.purchaseID
}

// ReceiverTopic returns the 32-byte topic value that matches an indexed
// receiver address, for server-side filtering.
func ReceiverTopic(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

// Decode converts one raw log into a PurchaseEvent owned by the given
// network. Addresses come out lowercase, amounts as exact decimal strings.
func (d *PurchaseDecoder) Decode(network config.Network, log types.Log) (model.PurchaseEvent, error) {
	if len(log.Topics) == 0 {
		return model.PurchaseEvent{}, fmt.Errorf("missing topics")
	}
	if log.Topics[0] != d.purchaseID {
		return model.PurchaseEvent{}, fmt.Errorf("unexpected topic0: %s", log.Topics[0].Hex())
	}

	indexedArgs := indexedArguments(d.event.Inputs)
	if len(log.Topics) != len(indexedArgs)+1 {
		return model.PurchaseEvent{}, fmt.Errorf("expected %d topics, got %d", len(indexedArgs)+1, len(log.Topics))
	}

	var indexed struct {
		Buyer    common.Address
		Receiver common.Address
	}
	if err := abi.ParseTopics(&indexed, indexedArgs, log.Topics[1:]); err != nil {
		return model.PurchaseEvent{}, fmt.Errorf("parse topics: %w", err)
	}

	values, err := d.event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return model.PurchaseEvent{}, fmt.Errorf("unpack Purchase: %w", err)
	}
	if len(values) != 2 {
		return model.PurchaseEvent{}, fmt.Errorf("unexpected purchase values: %d", len(values))
	}

	stableAmount, err := asBigInt(values[0])
	if err != nil {
		return model.PurchaseEvent{}, err
	}
	baseAmount, err := asBigInt(values[1])
	if err != nil {
		return model.PurchaseEvent{}, err
	}
	if stableAmount.Sign() < 0 || baseAmount.Sign() < 0 {
		return model.PurchaseEvent{}, fmt.Errorf("negative purchase amount")
	}

	return model.PurchaseEvent{
		ChainID:          network.ChainID,
		NetworkName:      network.Name,
		BlockNumber:      log.BlockNumber,
		TxHash:           log.TxHash.Hex(),
		LogIndex:         uint64(log.Index),
		Buyer:            strings.ToLower(indexed.Buyer.Hex()),
		Receiver:         strings.ToLower(indexed.Receiver.Hex()),
		AmountStableCoin: formatAmount(stableAmount, stableCoinExp),
		AmountBaseCoin:   formatAmount(baseAmount, baseCoinExp),
	}, nil
}

// formatAmount renders a raw integer with the given decimal exponent. The
// decimal package keeps the value exact and never switches to scientific
// notation.
func formatAmount(raw *big.Int, exp int32) string {
	return decimal.NewFromBigInt(raw, exp).String()
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}
