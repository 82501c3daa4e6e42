package chains

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mainnet() NetworkConfig {
	return NetworkConfig{
		Name:    "mainnet",
		ChainID: 1,
		RPCs: []RPC{
			{Name: "Cloudflare", URL: "https://cloudflare-eth.com"},
			{Name: "Ankr", URL: " https://rpc.ankr.com/eth "},
		},
	}
}

func TestResolveRPC(t *testing.T) {
	got, err := ResolveRPC(mainnet(), "")
	require.NoError(t, err)
	assert.Equal(t, ResolvedChain{NetworkName: "mainnet", ChainID: 1, RPCName: "Cloudflare", URL: "https://cloudflare-eth.com"}, got)

	got, err = ResolveRPC(mainnet(), "ankr")
	require.NoError(t, err)
	assert.Equal(t, "Ankr", got.RPCName)
	assert.Equal(t, "https://rpc.ankr.com/eth", got.URL)

	got, err = ResolveRPC(mainnet(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, "Cloudflare", got.RPCName)
}

func TestResolveRPC_Errors(t *testing.T) {
	noName := mainnet()
	noName.Name = " "
	_, err := ResolveRPC(noName, "")
	assert.Error(t, err)

	noRPCs := mainnet()
	noRPCs.RPCs = nil
	_, err = ResolveRPC(noRPCs, "")
	assert.Error(t, err)

	emptyURL := mainnet()
	emptyURL.RPCs[0].URL = ""
	_, err = ResolveRPC(emptyURL, "Cloudflare")
	assert.Error(t, err)
}
