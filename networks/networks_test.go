package networks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x402 "github.com/coinbase/x402-discovery"
)

func TestResolveKnownNetworks(t *testing.T) {
	tests := []struct {
		shortID string
		chainID x402.Network
		asset   string
	}{
		{"base", "eip155:8453", "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"},
		{"base-sepolia", "eip155:84532", "0x036CbD53842c5426634e7929541eC2318f3dCF7e"},
		{"ethereum", "eip155:1", "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
		{"polygon", "eip155:137", "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359"},
		{"solana", "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"},
	}

	for _, tt := range tests {
		t.Run(tt.shortID, func(t *testing.T) {
			assert.Equal(t, tt.chainID, ResolveChainID(tt.shortID))
			assert.Equal(t, tt.asset, ResolveAsset(tt.shortID))
		})
	}
}

func TestResolveEveryRegisteredEntry(t *testing.T) {
	for _, id := range ShortIDs() {
		entry, ok := Lookup(id)
		require.True(t, ok, id)
		assert.Equal(t, id, entry.ShortID)
		assert.Equal(t, entry.ChainID, ResolveChainID(id))
		assert.Equal(t, entry.DefaultAsset, ResolveAsset(id))
	}
}

func TestResolveUnknownNetwork(t *testing.T) {
	assert.Equal(t, x402.Network("eip155:x"), ResolveChainID("x"))
	assert.Equal(t, x402.Network("eip155:mystery-chain"), ResolveChainID("mystery-chain"))
	assert.Equal(t, ResolveAsset(DefaultNetwork), ResolveAsset("mystery-chain"))

	// Short ids are matched exactly
	assert.Equal(t, x402.Network("eip155:Base"), ResolveChainID("Base"))

	_, ok := Lookup("mystery-chain")
	assert.False(t, ok)
}

func TestShortIDsSorted(t *testing.T) {
	ids := ShortIDs()
	require.NotEmpty(t, ids)
	assert.IsIncreasing(t, ids)
	assert.Contains(t, ids, DefaultNetwork)
}

func TestIsEVM(t *testing.T) {
	assert.True(t, IsEVM(NetworkBase))
	assert.True(t, IsEVM(ResolveChainID("unknown")))
	assert.False(t, IsEVM(NetworkSolanaDevnet))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate())
}

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   NetworkEntry
		wantErr string
	}{
		{"evm ok", NetworkEntry{ChainID: NetworkBase, DefaultAsset: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"}, ""},
		{"evm not hex", NetworkEntry{ChainID: NetworkBase, DefaultAsset: "usdc"}, "not a hex address"},
		{"evm lowercase", NetworkEntry{ChainID: NetworkBase, DefaultAsset: "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913"}, "not checksummed"},
		{"solana ok", NetworkEntry{ChainID: NetworkSolanaMainnet, DefaultAsset: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"}, ""},
		{"solana bad mint", NetworkEntry{ChainID: NetworkSolanaMainnet, DefaultAsset: "0OIl"}, "not a valid mint"},
		{"unknown namespace", NetworkEntry{ChainID: "cosmos:hub", DefaultAsset: "uatom"}, "unsupported namespace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEntry("test", tt.entry)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
