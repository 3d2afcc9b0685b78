package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/azoth-protocol/azoth-deploy/internal/domain"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/models"
	"github.com/ethereum/go-ethereum/common"
)

// DeployContracts runs a deployment plan step by step from a single deployer
type DeployContracts struct {
	chain     ChainClient
	artifacts ArtifactLoader
	encoder   ABIEncoder
	predictor *PredictAddress
	records   DeploymentRecordStore
	progress  ProgressSink
	log       *slog.Logger
}

// NewDeployContracts creates a new DeployContracts use case
func NewDeployContracts(
	chain ChainClient,
	artifacts ArtifactLoader,
	encoder ABIEncoder,
	predictor *PredictAddress,
	records DeploymentRecordStore,
	progress ProgressSink,
	log *slog.Logger,
) *DeployContracts {
	return &DeployContracts{
		chain:     chain,
		artifacts: artifacts,
		encoder:   encoder,
		predictor: predictor,
		records:   records,
		progress:  progress,
		log:       log.With("component", "DeployContracts"),
	}
}

// DeployParams contains the inputs of a deployment run
type DeployParams struct {
	Plan         *domain.DeploymentPlan
	Owner        common.Address
	FeeRecipient common.Address
	// ChainID is the chain the run must target, 0 accepts any
	ChainID uint64
}

// deployRun is the mutable state of one Run call
type deployRun struct {
	plan    *domain.DeploymentPlan
	rc      *domain.RunContext
	summary *models.DeploymentSummary
	// targets maps the index of a predicted deployment to the prediction's name
	targets map[int]string
}

// Run executes every step of the plan in order. On failure it returns the summary of the
// steps confirmed so far together with a *domain.StepError; nothing is rolled back.
func (uc *DeployContracts) Run(ctx context.Context, params DeployParams) (*models.DeploymentSummary, error) {
	if err := params.Plan.Validate(); err != nil {
		return nil, err
	}

	chainID, err := uc.chain.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: chain id: %w", domain.ErrChainQueryFailed, err)
	}
	if params.ChainID != 0 && params.ChainID != chainID {
		return nil, fmt.Errorf("rpc endpoint is on chain %d, expected %d", chainID, params.ChainID)
	}

	sender := uc.chain.Sender()
	run := &deployRun{
		plan: params.Plan,
		rc:   domain.NewRunContext(sender, chainID),
		summary: &models.DeploymentSummary{
			ChainID:      chainID,
			Sender:       sender,
			Owner:        params.Owner,
			FeeRecipient: params.FeeRecipient,
			Contracts:    []*models.DeployedContract{},
			StartedAt:    time.Now(),
		},
		targets: make(map[int]string),
	}

	uc.log.Info("starting deployment",
		"chain_id", chainID,
		"sender", sender.Hex(),
		"steps", len(params.Plan.Steps),
		"transactions", params.Plan.Transactions())

	for i, step := range params.Plan.Steps {
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:   string(step.Kind),
			Current: i + 1,
			Total:   len(params.Plan.Steps),
			Message: step.String(),
			Spinner: step.Kind.IsTransaction(),
		})

		if err := uc.runStep(ctx, run, i, step); err != nil {
			uc.progress.Error(fmt.Sprintf("%s failed", step))
			uc.finish(ctx, run, false)
			return run.summary, &domain.StepError{Index: i, Kind: step.Kind, Name: step.Name, Err: err}
		}
	}

	uc.finish(ctx, run, true)
	uc.progress.Info(fmt.Sprintf("Deployed %d contracts", len(run.summary.Contracts)))
	return run.summary, nil
}

func (uc *DeployContracts) runStep(ctx context.Context, run *deployRun, i int, step domain.Step) error {
	var (
		contract *models.DeployedContract
		err      error
	)

	switch step.Kind {
	case domain.StepPredict:
		return uc.predict(ctx, run, i, step)
	case domain.StepDeployLogic:
		contract, err = uc.deployLogic(ctx, run, step)
	case domain.StepDeployProxy:
		contract, err = uc.deployProxy(ctx, run, step)
	default:
		return fmt.Errorf("%w: unknown step kind %q", domain.ErrInvalidPlan, step.Kind)
	}
	if err != nil {
		return err
	}

	contract.StepIndex = i
	if err := run.rc.Record(contract); err != nil {
		return err
	}
	run.summary.Contracts = run.rc.Contracts()

	uc.log.Info("contract deployed",
		"name", contract.Name,
		"kind", contract.Kind,
		"address", contract.Address.Hex(),
		"tx", contract.TxHash.Hex())

	if name, ok := run.targets[i]; ok {
		prediction, _ := run.rc.Prediction(name)
		if prediction.Address != contract.Address {
			return fmt.Errorf("%w: %s predicted at %s (nonce %d) but deployed at %s",
				domain.ErrPredictionMismatch, name, prediction.Address.Hex(), prediction.Nonce, contract.Address.Hex())
		}
	}

	// A lost record doesn't undo the deployment, so keep going
	if err := uc.records.Save(ctx, run.summary); err != nil {
		uc.log.Warn("failed to save deployment record", "error", err)
	}
	return nil
}

func (uc *DeployContracts) predict(ctx context.Context, run *deployRun, i int, step domain.Step) error {
	offset, err := run.plan.PredictionOffset(i)
	if err != nil {
		return err
	}
	target, err := run.plan.PredictionTarget(i)
	if err != nil {
		return err
	}

	prediction, err := uc.predictor.Predict(ctx, run.rc.Sender, offset)
	if err != nil {
		return err
	}
	prediction.Name = step.Name

	if err := run.rc.RecordPrediction(prediction); err != nil {
		return err
	}
	run.targets[target] = step.Name
	run.summary.Predictions = run.rc.Predictions()

	uc.log.Info("address predicted",
		"name", step.Name,
		"nonce", prediction.Nonce,
		"address", prediction.Address.Hex())
	return nil
}

func (uc *DeployContracts) deployLogic(ctx context.Context, run *deployRun, step domain.Step) (*models.DeployedContract, error) {
	artifact, err := uc.artifacts.Load(ctx, step.Name)
	if err != nil {
		return nil, err
	}

	values, err := run.rc.ResolveAll(step.Args)
	if err != nil {
		return nil, err
	}

	ctorArgs, err := uc.encoder.EncodeConstructorArgs(artifact.ABI, values)
	if err != nil {
		return nil, fmt.Errorf("constructor of %s: %w", step.Name, err)
	}

	address, txHash, err := uc.send(ctx, artifact.Bytecode, ctorArgs)
	if err != nil {
		return nil, err
	}

	return &models.DeployedContract{
		Name:            step.Name,
		Kind:            models.LogicContract,
		ArtifactName:    artifact.Name,
		Address:         address,
		TxHash:          txHash,
		ConstructorArgs: uc.encoder.FormatArgs(values),
		DeployedAt:      time.Now(),
	}, nil
}

func (uc *DeployContracts) deployProxy(ctx context.Context, run *deployRun, step domain.Step) (*models.DeployedContract, error) {
	logic, ok := run.rc.Lookup(step.Name, models.LogicContract)
	if !ok {
		return nil, fmt.Errorf("%w: no logic contract deployed for %s", domain.ErrUnresolvedReference, step.Name)
	}

	logicArtifact, err := uc.artifacts.Load(ctx, step.Name)
	if err != nil {
		return nil, err
	}
	proxyArtifact, err := uc.artifacts.Load(ctx, domain.ProxyArtifactName)
	if err != nil {
		return nil, err
	}

	values, err := run.rc.ResolveAll(step.Args)
	if err != nil {
		return nil, err
	}

	initData, err := uc.encoder.EncodeInitializer(logicArtifact.ABI, values)
	if err != nil {
		return nil, fmt.Errorf("initializer of %s: %w", step.Name, err)
	}

	ctorArgs, err := uc.encoder.EncodeProxyConstructorArgs(logic.Address, initData)
	if err != nil {
		return nil, fmt.Errorf("proxy constructor of %s: %w", step.Name, err)
	}

	address, txHash, err := uc.send(ctx, proxyArtifact.Bytecode, ctorArgs)
	if err != nil {
		return nil, err
	}

	return &models.DeployedContract{
		Name:            step.Name,
		Kind:            models.ProxyContract,
		ArtifactName:    proxyArtifact.Name,
		Address:         address,
		TxHash:          txHash,
		ConstructorArgs: uc.encoder.FormatArgs([]any{logic.Address, initData}),
		Implementation:  logic.Address,
		InitializerArgs: uc.encoder.FormatArgs(values),
		DeployedAt:      time.Now(),
	}, nil
}

// send submits a creation transaction and waits until it is mined
func (uc *DeployContracts) send(ctx context.Context, bytecode, ctorArgs []byte) (common.Address, common.Hash, error) {
	pending, err := uc.chain.Deploy(ctx, bytecode, ctorArgs)
	if err != nil {
		return common.Address{}, common.Hash{}, asTransactionFailure(err)
	}

	txHash := pending.TxHash()
	uc.log.Debug("transaction sent", "tx", txHash.Hex())

	address, err := pending.Wait(ctx)
	if err != nil {
		return common.Address{}, txHash, asTransactionFailure(err)
	}
	return address, txHash, nil
}

func (uc *DeployContracts) finish(ctx context.Context, run *deployRun, complete bool) {
	run.summary.Complete = complete
	run.summary.CompletedAt = time.Now()
	run.summary.Predictions = run.rc.Predictions()
	run.summary.Contracts = run.rc.Contracts()

	if len(run.summary.Contracts) == 0 {
		return
	}
	if err := uc.records.Save(ctx, run.summary); err != nil {
		uc.log.Warn("failed to save deployment record", "error", err)
	}
}

func asTransactionFailure(err error) error {
	if errors.Is(err, domain.ErrTransactionFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrTransactionFailed, err)
}
