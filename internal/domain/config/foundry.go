package config

// FoundryConfig represents the parts of foundry.toml the deployer reads
type FoundryConfig struct {
	Profile      map[string]ProfileConfig   `toml:"profile"`
	RpcEndpoints map[string]string          `toml:"rpc_endpoints"`
	Etherscan    map[string]EtherscanConfig `toml:"etherscan,omitempty"`
}

// EtherscanConfig represents Etherscan configuration for a network
type EtherscanConfig struct {
	Key string `toml:"key,omitempty"`
	URL string `toml:"url,omitempty"`
}

// ProfileConfig represents a foundry profile
type ProfileConfig struct {
	SrcPath       string `toml:"src,omitempty"`
	OutPath       string `toml:"out,omitempty"`
	SolcVersion   string `toml:"solc_version,omitempty"`
	Optimizer     bool   `toml:"optimizer,omitempty"`
	OptimizerRuns int    `toml:"optimizer_runs,omitempty"`
}

// OutDir returns the artifact directory of the profile, falling back to the default profile
// and then to foundry's own default
func (f *FoundryConfig) OutDir(profile string) string {
	if f != nil {
		if p, ok := f.Profile[profile]; ok && p.OutPath != "" {
			return p.OutPath
		}
		if p, ok := f.Profile["default"]; ok && p.OutPath != "" {
			return p.OutPath
		}
	}
	return "out"
}
