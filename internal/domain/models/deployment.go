package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ContractKind tells logic contracts and their proxies apart
type ContractKind string

const (
	LogicContract ContractKind = "LOGIC"
	ProxyContract ContractKind = "PROXY"
)

// DeployedContract is created once when a creation transaction confirms and never mutated
type DeployedContract struct {
	// Name is the logical contract name ("Azoth"); proxies share it with their logic contract
	Name         string         `json:"name"`
	Kind         ContractKind   `json:"kind"`
	ArtifactName string         `json:"artifactName"`
	Address      common.Address `json:"address"`
	TxHash       common.Hash    `json:"txHash"`
	StepIndex    int            `json:"step"`

	// ConstructorArgs holds the resolved constructor values in canonical string form
	ConstructorArgs []string `json:"constructorArgs,omitempty"`

	// Proxy only
	Implementation  common.Address `json:"implementation,omitempty"`
	InitializerArgs []string       `json:"initializerArgs,omitempty"`

	DeployedAt time.Time `json:"deployedAt"`
}

// IsProxy reports whether the contract is an ERC1967 proxy
func (d *DeployedContract) IsProxy() bool {
	return d.Kind == ProxyContract
}

// Prediction is an address computed before its creation transaction is sent
type Prediction struct {
	Name     string         `json:"name"`
	Sender   common.Address `json:"sender"`
	Baseline uint64         `json:"baseline"`
	Offset   uint64         `json:"offset"`
	Nonce    uint64         `json:"nonce"`
	Address  common.Address `json:"address"`
}

// DeploymentSummary is the ordered outcome of a deployment run
type DeploymentSummary struct {
	ChainID      uint64              `json:"chainId"`
	Sender       common.Address      `json:"sender"`
	Owner        common.Address      `json:"owner"`
	FeeRecipient common.Address      `json:"feeRecipient"`
	Predictions  []*Prediction       `json:"predictions,omitempty"`
	Contracts    []*DeployedContract `json:"contracts"`
	StartedAt    time.Time           `json:"startedAt"`
	CompletedAt  time.Time           `json:"completedAt,omitempty"`
	// Complete is false when the run aborted; the recorded contracts remain deployed
	Complete bool `json:"complete"`
}

// Final returns the address a logical name resolves to: its proxy if one was deployed
func (s *DeploymentSummary) Final(name string) (*DeployedContract, bool) {
	var found *DeployedContract
	for _, c := range s.Contracts {
		if c.Name != name {
			continue
		}
		if found == nil || c.IsProxy() {
			found = c
		}
	}
	return found, found != nil
}

// Logical returns the logical names in deployment order, without duplicates
func (s *DeploymentSummary) Logical() []string {
	seen := map[string]bool{}
	var names []string
	for _, c := range s.Contracts {
		if !seen[c.Name] {
			seen[c.Name] = true
			names = append(names, c.Name)
		}
	}
	return names
}
