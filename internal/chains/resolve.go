package chains

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ResolveRPC picks the RPC named preferred (case-insensitive), otherwise the first one.
func ResolveRPC(network NetworkConfig, preferred string) (ResolvedChain, error) {
	networkName := strings.TrimSpace(network.Name)
	if networkName == "" {
		return ResolvedChain{}, errors.New("network name is empty")
	}

	var selectedRPC *RPC
	if preferred = strings.TrimSpace(preferred); preferred != "" {
		for i := range network.RPCs {
			if strings.EqualFold(strings.TrimSpace(network.RPCs[i].Name), preferred) {
				selectedRPC = &network.RPCs[i]
				break
			}
		}
	}
	if selectedRPC == nil {
		if len(network.RPCs) == 0 {
			return ResolvedChain{}, errors.Newf("network %q has no RPCs configured", networkName)
		}
		selectedRPC = &network.RPCs[0]
	}

	if strings.TrimSpace(selectedRPC.URL) == "" {
		return ResolvedChain{}, errors.Newf("network %q rpc %q url is empty", networkName, selectedRPC.Name)
	}

	return ResolvedChain{
		NetworkName: networkName,
		ChainID:     network.ChainID,
		RPCName:     selectedRPC.Name,
		URL:         strings.TrimSpace(selectedRPC.URL),
	}, nil
}

// Dial connects to the resolved endpoint. The caller owns the returned client.
func Dial(ctx context.Context, chain ResolvedChain) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, chain.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %q rpc %q", chain.NetworkName, chain.RPCName)
	}
	return client, nil
}

// Close releases a client returned by Dial.
func Close(client *ethclient.Client) {
	if client == nil {
		return
	}
	client.Close()
}
