package adapters

import (
	"github.com/azoth-protocol/azoth-deploy/internal/adapters/abi"
	"github.com/azoth-protocol/azoth-deploy/internal/adapters/artifacts"
	"github.com/azoth-protocol/azoth-deploy/internal/adapters/blockchain"
	"github.com/azoth-protocol/azoth-deploy/internal/adapters/interactive"
	"github.com/azoth-protocol/azoth-deploy/internal/adapters/repository/deployments"
	"github.com/azoth-protocol/azoth-deploy/internal/adapters/verification"
	"github.com/azoth-protocol/azoth-deploy/internal/usecase"
	"github.com/google/wire"
	"github.com/spf13/afero"
)

// ProvideFs provides the filesystem build output is read from
func ProvideFs() afero.Fs {
	return afero.NewOsFs()
}

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	ProvideFs,

	artifacts.NewLoader,
	wire.Bind(new(usecase.ArtifactLoader), new(*artifacts.Loader)),

	deployments.NewFileRepository,
	wire.Bind(new(usecase.DeploymentRecordStore), new(*deployments.FileRepository)),
)

// BlockchainSet provides the RPC-backed chain client
var BlockchainSet = wire.NewSet(
	blockchain.NewClient,
	wire.Bind(new(usecase.ChainClient), new(*blockchain.Client)),
)

// EncodingSet provides ABI encoding
var EncodingSet = wire.NewSet(
	abi.NewEncoder,
	wire.Bind(new(usecase.ABIEncoder), new(*abi.Encoder)),
)

// VerificationSet provides forge-based verification
var VerificationSet = wire.NewSet(
	verification.NewForgeVerifier,
	wire.Bind(new(usecase.ContractVerifier), new(*verification.ForgeVerifier)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewConfirmer,
	wire.Bind(new(usecase.Confirmer), new(*interactive.Confirmer)),

	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.RunSelector), new(*interactive.SelectorAdapter)),

	interactive.NewContractPickerAdapter,
	wire.Bind(new(usecase.ContractPicker), new(*interactive.ContractPickerAdapter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	BlockchainSet,
	EncodingSet,
	VerificationSet,
	InteractiveSet,
)
