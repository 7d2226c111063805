package contract

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const paymentABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "buyer", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "receiver", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "stableAmount", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "baseAmount", "type": "uint256"}
    ],
    "name": "Purchase",
    "type": "event"
  }
]`

var (
	paymentABI     abi.ABI
	paymentABIOnce sync.Once
	paymentABIErr  error
)

// PaymentABI returns the parsed payment contract ABI.
func PaymentABI() (abi.ABI, error) {
	paymentABIOnce.Do(func() {
		paymentABI, paymentABIErr = abi.JSON(strings.NewReader(paymentABIJSON))
	})
	return paymentABI, paymentABIErr
}
