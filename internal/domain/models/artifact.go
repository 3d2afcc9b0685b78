package models

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// BytecodeObject represents bytecode information in a Foundry artifact
type BytecodeObject struct {
	Object         string         `json:"object"`
	SourceMap      string         `json:"sourceMap"`
	LinkReferences map[string]any `json:"linkReferences"`
}

// Artifact represents a Foundry compilation artifact as written to the out directory
type Artifact struct {
	ABI              json.RawMessage  `json:"abi"`
	Bytecode         BytecodeObject   `json:"bytecode"`
	DeployedBytecode BytecodeObject   `json:"deployedBytecode"`
	Metadata         ArtifactMetadata `json:"metadata"`
}

// ArtifactMetadata represents the metadata section of a Foundry artifact
type ArtifactMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
	Language string `json:"language"`
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
}

// ContractArtifact is a parsed artifact ready to deploy. It is read-only once loaded.
type ContractArtifact struct {
	Name            string
	Path            string
	ABI             abi.ABI
	Bytecode        []byte
	CompilerVersion string
}
