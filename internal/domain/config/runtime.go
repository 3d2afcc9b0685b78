package config

import (
	"crypto/ecdsa"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// DefaultCompilerVersion is the solc build the contracts are compiled with
	DefaultCompilerVersion = "v0.8.28+commit.7893614"

	// DefaultOptimizationRuns matches the optimizer setting of the build
	DefaultOptimizationRuns = 200
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot  string
	DataDir      string
	ArtifactsDir string
	Profile      string

	// Chain settings
	RPCURL     string
	PrivateKey *ecdsa.PrivateKey
	Sender     common.Address
	ChainID    uint64 // expected chain id, 0 accepts whatever the RPC reports

	// Deployment parameters
	Owner        common.Address
	FeeRecipient common.Address

	// Verification settings
	EtherscanAPIKey  string
	CompilerVersion  string
	OptimizationRuns int
	SkipVerify       bool
	DryRun           bool
	Parallel         int

	// Execution settings
	Debug          bool
	NonInteractive bool
	Yes            bool
	Output         string // text, json or yaml
	Timeout        time.Duration

	FoundryConfig *FoundryConfig
}
