package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// VerificationStatus represents the outcome of a verification attempt
type VerificationStatus string

const (
	VerificationStatusVerified VerificationStatus = "VERIFIED"
	VerificationStatusFailed   VerificationStatus = "FAILED"
	VerificationStatusSkipped  VerificationStatus = "SKIPPED"
)

// VerificationRequest is everything the explorer needs to match a deployed bytecode
type VerificationRequest struct {
	// Name is the logical contract name, ArtifactName the compiled contract submitted
	Name             string         `json:"name"`
	Kind             ContractKind   `json:"kind"`
	ArtifactName     string         `json:"artifactName"`
	Address          common.Address `json:"address"`
	ChainID          uint64         `json:"chainId"`
	ConstructorArgs  string         `json:"constructorArgs,omitempty"` // hex, no 0x prefix
	CompilerVersion  string         `json:"compilerVersion"`
	OptimizationRuns int            `json:"optimizationRuns"`
	APIKey           string         `json:"-"`
}

// VerificationResult is the per-contract outcome reported after the verification phase
type VerificationResult struct {
	Request  *VerificationRequest `json:"request"`
	Status   VerificationStatus   `json:"status"`
	Output   string               `json:"output,omitempty"`
	Error    string               `json:"error,omitempty"`
	Duration time.Duration        `json:"duration"`
}

// Success reports whether the contract ended up verified
func (r *VerificationResult) Success() bool {
	return r.Status == VerificationStatusVerified
}
