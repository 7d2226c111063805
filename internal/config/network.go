package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Network is the resolved descriptor for one deployment of the payment
// contract. Values are fixed after Load.
type Network struct {
	Key             string
	ChainID         uint64
	Name            string
	RPCURL          string
	ExplorerURL     string
	ContractAddress string
	StartBlock      uint64
}

// Address returns the contract address in go-ethereum form.
func (n Network) Address() common.Address {
	return common.HexToAddress(n.ContractAddress)
}

// TxURL renders the explorer link for a transaction hash.
func (n Network) TxURL(hash string) string {
	return strings.TrimRight(n.ExplorerURL, "/") + "/tx/" + hash
}

// presets carry the fixed identity of the supported networks. The contract
// address and deployment start block always come from configuration.
var presets = map[string]Network{
	"ethereum": {
		Key:         "ethereum",
		ChainID:     1,
		Name:        "Ethereum",
		RPCURL:      "https://ethereum-rpc.publicnode.com",
		ExplorerURL: "https://etherscan.io",
	},
	"bsc": {
		Key:         "bsc",
		ChainID:     56,
		Name:        "BNB Smart Chain",
		RPCURL:      "https://bsc-rpc.publicnode.com",
		ExplorerURL: "https://bscscan.com",
	},
	"polygon": {
		Key:         "polygon",
		ChainID:     137,
		Name:        "Polygon",
		RPCURL:      "https://polygon-bor-rpc.publicnode.com",
		ExplorerURL: "https://polygonscan.com",
	},
}

// resolveNetworks maps the enabled keys onto presets plus operator overrides,
// preserving the enabled order. That order is also the concatenation order
// for aggregated output.
func resolveNetworks(enabled []string, overrides map[string]NetworkOverride) ([]Network, error) {
	out := make([]Network, 0, len(enabled))
	seen := make(map[string]bool, len(enabled))

	for _, key := range enabled {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if seen[key] {
			return nil, fmt.Errorf("network %q enabled twice", key)
		}
		seen[key] = true

		network, ok := presets[key]
		if !ok {
			return nil, fmt.Errorf("unknown network %q", key)
		}

		ov := overrides[key]
		if ov.RPCURL != "" {
			network.RPCURL = ov.RPCURL
		}
		if ov.ExplorerURL != "" {
			network.ExplorerURL = ov.ExplorerURL
		}
		network.ContractAddress = ov.ContractAddress
		network.StartBlock = ov.StartBlock

		if err := network.validate(); err != nil {
			return nil, err
		}
		out = append(out, network)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no networks enabled")
	}
	return out, nil
}

func (n Network) validate() error {
	if n.ContractAddress == "" {
		return fmt.Errorf("network %s: contract_address is required", n.Key)
	}
	if !common.IsHexAddress(n.ContractAddress) {
		return fmt.Errorf("network %s: contract_address %q is not a hex address", n.Key, n.ContractAddress)
	}
	if n.StartBlock == 0 {
		return fmt.Errorf("network %s: start_block is required", n.Key)
	}
	return nil
}
