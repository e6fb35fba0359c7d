// Package networks maps short legacy network names ("base", "polygon") to
// CAIP-2 chain identifiers and the default stablecoin asset on that chain.
//
// The tables are read-only and are never mutated after package initialization.
// Lookups never fail: unknown names resolve to a best-effort eip155 identifier
// and to the asset of DefaultNetwork.
package networks

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	solana "github.com/gagliardetto/solana-go"

	x402 "github.com/coinbase/x402-discovery"
)

// DefaultNetwork is the short id whose asset is used for unknown networks
const DefaultNetwork = "base"

// CAIP-2 network identifiers
const (
	// EVM Mainnets
	NetworkBase      x402.Network = "eip155:8453"
	NetworkEthereum  x402.Network = "eip155:1"
	NetworkPolygon   x402.Network = "eip155:137"
	NetworkAvalanche x402.Network = "eip155:43114"
	NetworkArbitrum  x402.Network = "eip155:42161"
	NetworkOptimism  x402.Network = "eip155:10"

	// EVM Testnets
	NetworkBaseSepolia   x402.Network = "eip155:84532"
	NetworkSepolia       x402.Network = "eip155:11155111"
	NetworkPolygonAmoy   x402.Network = "eip155:80002"
	NetworkAvalancheFuji x402.Network = "eip155:43113"

	// Solana networks (genesis hash as reference per CAIP-2)
	NetworkSolanaMainnet x402.Network = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"
	NetworkSolanaDevnet  x402.Network = "solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1"
)

// NetworkEntry is one row of the registry
type NetworkEntry struct {
	ShortID      string
	ChainID      x402.Network
	DefaultAsset string
}

// USDC contract and mint addresses
var entries = map[string]NetworkEntry{
	"base": {
		ChainID:      NetworkBase,
		DefaultAsset: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
	},
	"base-sepolia": {
		ChainID:      NetworkBaseSepolia,
		DefaultAsset: "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
	},
	"ethereum": {
		ChainID:      NetworkEthereum,
		DefaultAsset: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
	},
	"sepolia": {
		ChainID:      NetworkSepolia,
		DefaultAsset: "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238",
	},
	"polygon": {
		ChainID:      NetworkPolygon,
		DefaultAsset: "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359",
	},
	"polygon-amoy": {
		ChainID:      NetworkPolygonAmoy,
		DefaultAsset: "0x41E94Eb019C0762f9Bfcf9Fb1E58725BfB0e7582",
	},
	"avalanche": {
		ChainID:      NetworkAvalanche,
		DefaultAsset: "0xB97EF9Ef8734C71904D8002F8b6Bc66Dd9c48a6E",
	},
	"avalanche-fuji": {
		ChainID:      NetworkAvalancheFuji,
		DefaultAsset: "0x5425890298aed601595a70AB815c96711a31Bc65",
	},
	"arbitrum": {
		ChainID:      NetworkArbitrum,
		DefaultAsset: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
	},
	"optimism": {
		ChainID:      NetworkOptimism,
		DefaultAsset: "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85",
	},
	"solana": {
		ChainID:      NetworkSolanaMainnet,
		DefaultAsset: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	},
	"solana-devnet": {
		ChainID:      NetworkSolanaDevnet,
		DefaultAsset: "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU",
	},
}

// ResolveChainID returns the CAIP-2 identifier for a short network id.
// Unknown ids are not validated and resolve to "eip155:" + shortID.
func ResolveChainID(shortID string) x402.Network {
	if entry, ok := entries[shortID]; ok {
		return entry.ChainID
	}
	return x402.Network("eip155:" + shortID)
}

// ResolveAsset returns the default asset address for a short network id,
// falling back to the asset of DefaultNetwork.
func ResolveAsset(shortID string) string {
	if entry, ok := entries[shortID]; ok {
		return entry.DefaultAsset
	}
	return entries[DefaultNetwork].DefaultAsset
}

// Lookup returns the registry entry for a short network id
func Lookup(shortID string) (NetworkEntry, bool) {
	entry, ok := entries[shortID]
	if !ok {
		return NetworkEntry{}, false
	}
	entry.ShortID = shortID
	return entry, true
}

// ShortIDs returns every known short network id in sorted order
func ShortIDs() []string {
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsEVM reports whether the network belongs to the eip155 namespace
func IsEVM(network x402.Network) bool {
	return network.Namespace() == "eip155"
}

// Validate checks that every registry asset is a well-formed address for its
// chain family: EIP-55 checksummed hex for EVM, base58 public keys for Solana.
func Validate() error {
	for _, id := range ShortIDs() {
		if err := validateEntry(id, entries[id]); err != nil {
			return err
		}
	}
	return nil
}

func validateEntry(id string, entry NetworkEntry) error {
	switch {
	case IsEVM(entry.ChainID):
		if !common.IsHexAddress(entry.DefaultAsset) {
			return fmt.Errorf("network %s: asset %q is not a hex address", id, entry.DefaultAsset)
		}
		if checksummed := common.HexToAddress(entry.DefaultAsset).Hex(); checksummed != entry.DefaultAsset {
			return fmt.Errorf("network %s: asset %q is not checksummed (want %s)", id, entry.DefaultAsset, checksummed)
		}
	case entry.ChainID.Namespace() == "solana":
		if _, err := solana.PublicKeyFromBase58(entry.DefaultAsset); err != nil {
			return fmt.Errorf("network %s: asset %q is not a valid mint: %w", id, entry.DefaultAsset, err)
		}
	default:
		return fmt.Errorf("network %s: unsupported namespace in %s", id, entry.ChainID)
	}
	return nil
}
