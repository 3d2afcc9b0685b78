package usecase

import (
	"context"

	"github.com/azoth-protocol/azoth-deploy/internal/domain/models"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ArtifactLoader provides access to compiled contracts
type ArtifactLoader interface {
	Load(ctx context.Context, name string) (*models.ContractArtifact, error)
}

// ChainClient sends creation transactions from the configured deployer
type ChainClient interface {
	Sender() common.Address
	ChainID(ctx context.Context) (uint64, error)
	// TransactionCount returns the next nonce of addr, pending transactions included
	TransactionCount(ctx context.Context, addr common.Address) (uint64, error)
	// Deploy submits bytecode with the already encoded constructor args appended
	Deploy(ctx context.Context, bytecode []byte, constructorArgs []byte) (PendingDeployment, error)
}

// PendingDeployment is a submitted creation transaction
type PendingDeployment interface {
	TxHash() common.Hash
	// Wait blocks until the transaction is mined and returns the created contract address
	Wait(ctx context.Context) (common.Address, error)
}

// ABIEncoder produces call data and constructor arguments
type ABIEncoder interface {
	EncodeInitializer(contractABI abi.ABI, args []any) ([]byte, error)
	EncodeConstructorArgs(contractABI abi.ABI, args []any) ([]byte, error)
	EncodeProxyConstructorArgs(logic common.Address, initData []byte) ([]byte, error)
	// FormatArgs and ParseArgs convert values to and from their persisted string form
	FormatArgs(args []any) []string
	ParseArgs(inputs abi.Arguments, values []string) ([]any, error)
}

// ContractVerifier submits a contract to the block explorer
type ContractVerifier interface {
	// Verify returns the tool output, also when verification fails
	Verify(ctx context.Context, req *models.VerificationRequest) (string, error)
	// Command returns the invocation Verify would run, for dry runs
	Command(req *models.VerificationRequest) []string
}

// DeploymentRecordStore persists deployment summaries between commands
type DeploymentRecordStore interface {
	Save(ctx context.Context, summary *models.DeploymentSummary) error
	Latest(ctx context.Context, chainID uint64) (*models.DeploymentSummary, error)
	List(ctx context.Context) []*models.DeploymentSummary
}

// Confirmer asks the user before sending transactions
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// RunSelector lets the user pick one of several recorded runs
type RunSelector interface {
	SelectRun(ctx context.Context, runs []*models.DeploymentSummary, prompt string) (*models.DeploymentSummary, error)
}

// ContractPicker lets the user choose which contracts of a run to verify
type ContractPicker interface {
	// PickContracts returns the chosen logical names
	PickContracts(ctx context.Context, summary *models.DeploymentSummary, prompt string) ([]string, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   string
	Current int
	Total   int
	Message string
	Spinner bool
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}
