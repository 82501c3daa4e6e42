package chains

// NetworkConfig describes the network balances are read from and its RPC endpoints.
type NetworkConfig struct {
	Name    string `json:"name" yaml:"name"`
	ChainID uint64 `json:"chainId" yaml:"chainId" mapstructure:"chainId"`
	RPCs    []RPC  `json:"rpcs" yaml:"rpcs"`
}

type RPC struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// ResolvedChain is the single endpoint chosen from a NetworkConfig.
type ResolvedChain struct {
	NetworkName string
	ChainID     uint64
	RPCName     string
	URL         string
}
