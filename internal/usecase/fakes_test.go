package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	abiadapter "github.com/azoth-protocol/azoth-deploy/internal/adapters/abi"
	"github.com/azoth-protocol/azoth-deploy/internal/domain"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/models"
	"github.com/azoth-protocol/azoth-deploy/internal/usecase"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	deployer     = common.HexToAddress("0x6ac7ea33f8831ea9dcc53393aaa88b25a785dbf0")
	owner        = common.HexToAddress("0x1111111111111111111111111111111111111111")
	feeRecipient = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

const (
	factoryABI = `[]`
	azothABI   = `[
		{"type":"constructor","inputs":[{"name":"factory","type":"address"},{"name":"nftManager","type":"address"}]},
		{"type":"function","name":"initialize","inputs":[{"name":"owner","type":"address"},{"name":"feeRecipient","type":"address"}],"outputs":[]}
	]`
	nftManagerABI = `[
		{"type":"constructor","inputs":[{"name":"azoth","type":"address"}]},
		{"type":"function","name":"initialize","inputs":[],"outputs":[]}
	]`
	proxyABI = `[
		{"type":"constructor","inputs":[{"name":"implementation","type":"address"},{"name":"_data","type":"bytes"}]}
	]`
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeArtifacts serves the Azoth suite artifacts from memory
type fakeArtifacts struct {
	artifacts map[string]*models.ContractArtifact
}

func newFakeArtifacts(t *testing.T) *fakeArtifacts {
	t.Helper()
	f := &fakeArtifacts{artifacts: map[string]*models.ContractArtifact{}}
	for i, entry := range []struct{ name, abi string }{
		{"Factory", factoryABI},
		{"Azoth", azothABI},
		{"NFTManager", nftManagerABI},
		{domain.ProxyArtifactName, proxyABI},
	} {
		parsed, err := abi.JSON(strings.NewReader(entry.abi))
		require.NoError(t, err)
		f.artifacts[entry.name] = &models.ContractArtifact{
			Name:     entry.name,
			ABI:      parsed,
			Bytecode: []byte{0x60, byte(i + 1)},
		}
	}
	return f
}

func (f *fakeArtifacts) Load(ctx context.Context, name string) (*models.ContractArtifact, error) {
	a, ok := f.artifacts[name]
	if !ok {
		return nil, &domain.ArtifactNotFoundError{Name: name}
	}
	return a, nil
}

// deployCall is a creation transaction seen by fakeChain
type deployCall struct {
	Bytecode []byte
	Args     []byte
	Nonce    uint64
}

// fakeChain behaves like a single-sender chain: each deployment consumes the next nonce and
// lands on the CREATE address of that nonce
type fakeChain struct {
	mu      sync.Mutex
	sender  common.Address
	chainID uint64
	nonce   uint64
	calls   []deployCall

	// failAt makes the deployment with this zero-based call index fail, -1 disables it
	failAt int
	// countErr fails TransactionCount
	countErr error
	// skipNonce makes the chain consume an extra nonce before the call with this index, -1 disables it
	skipNonce int
}

func newFakeChain(startNonce uint64) *fakeChain {
	return &fakeChain{
		sender:    deployer,
		chainID:   31337,
		nonce:     startNonce,
		failAt:    -1,
		skipNonce: -1,
	}
}

func (c *fakeChain) Sender() common.Address { return c.sender }

func (c *fakeChain) ChainID(ctx context.Context) (uint64, error) { return c.chainID, nil }

func (c *fakeChain) TransactionCount(ctx context.Context, addr common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.countErr != nil {
		return 0, c.countErr
	}
	return c.nonce, nil
}

func (c *fakeChain) Deploy(ctx context.Context, bytecode []byte, constructorArgs []byte) (usecase.PendingDeployment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	index := len(c.calls)
	if index == c.skipNonce {
		c.nonce++
	}
	c.calls = append(c.calls, deployCall{Bytecode: bytecode, Args: constructorArgs, Nonce: c.nonce})
	if index == c.failAt {
		return nil, errors.New("execution reverted")
	}
	address := crypto.CreateAddress(c.sender, c.nonce)
	c.nonce++
	return &fakePending{hash: common.BigToHash(common.Big1), address: address}, nil
}

func (c *fakeChain) Calls() []deployCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]deployCall(nil), c.calls...)
}

type fakePending struct {
	hash    common.Hash
	address common.Address
}

func (p *fakePending) TxHash() common.Hash { return p.hash }

func (p *fakePending) Wait(ctx context.Context) (common.Address, error) { return p.address, nil }

// MockRecordStore is a mock implementation of DeploymentRecordStore
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) Save(ctx context.Context, summary *models.DeploymentSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockRecordStore) Latest(ctx context.Context, chainID uint64) (*models.DeploymentSummary, error) {
	args := m.Called(ctx, chainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeploymentSummary), args.Error(1)
}

func (m *MockRecordStore) List(ctx context.Context) []*models.DeploymentSummary {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*models.DeploymentSummary)
}

// MockVerifier is a mock implementation of ContractVerifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, req *models.VerificationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockVerifier) Command(req *models.VerificationRequest) []string {
	return []string{"forge", "verify-contract", req.Address.Hex(), req.ArtifactName}
}

// MockSelector is a mock implementation of RunSelector
type MockSelector struct {
	mock.Mock
}

func (m *MockSelector) SelectRun(ctx context.Context, runs []*models.DeploymentSummary, prompt string) (*models.DeploymentSummary, error) {
	args := m.Called(ctx, runs, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeploymentSummary), args.Error(1)
}

// MockPicker is a mock implementation of ContractPicker
type MockPicker struct {
	mock.Mock
}

func (m *MockPicker) PickContracts(ctx context.Context, summary *models.DeploymentSummary, prompt string) ([]string, error) {
	args := m.Called(ctx, summary, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockProgressSink records the events it receives
type MockProgressSink struct {
	mu     sync.Mutex
	events []usecase.ProgressEvent
	errors []string
}

func (m *MockProgressSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *MockProgressSink) Info(message string) {}

func (m *MockProgressSink) Error(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, message)
}

// deployHarness wires DeployContracts against in-memory collaborators
type deployHarness struct {
	chain     *fakeChain
	artifacts *fakeArtifacts
	records   *MockRecordStore
	progress  *MockProgressSink
	uc        *usecase.DeployContracts
}

func newDeployHarness(t *testing.T, startNonce uint64) *deployHarness {
	t.Helper()
	h := &deployHarness{
		chain:     newFakeChain(startNonce),
		artifacts: newFakeArtifacts(t),
		records:   &MockRecordStore{},
		progress:  &MockProgressSink{},
	}
	h.records.On("Save", mock.Anything, mock.Anything).Return(nil)
	h.uc = usecase.NewDeployContracts(
		h.chain,
		h.artifacts,
		abiadapter.NewEncoder(),
		usecase.NewPredictAddress(h.chain, discardLogger()),
		h.records,
		h.progress,
		discardLogger(),
	)
	return h
}

func contractOf(t *testing.T, s *models.DeploymentSummary, name string, kind models.ContractKind) *models.DeployedContract {
	t.Helper()
	for _, c := range s.Contracts {
		if c.Name == name && c.Kind == kind {
			return c
		}
	}
	t.Fatalf("no %s contract recorded for %s", kind, name)
	return nil
}
