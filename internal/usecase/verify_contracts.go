package usecase

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/azoth-protocol/azoth-deploy/internal/domain"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/config"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/models"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// VerifyContracts submits every contract of a deployment run to the block explorer
type VerifyContracts struct {
	cfg       *config.RuntimeConfig
	artifacts ArtifactLoader
	encoder   ABIEncoder
	verifier  ContractVerifier
	records   DeploymentRecordStore
	selector  RunSelector
	picker    ContractPicker
	progress  ProgressSink
	log       *slog.Logger
}

// NewVerifyContracts creates a new VerifyContracts use case
func NewVerifyContracts(
	cfg *config.RuntimeConfig,
	artifacts ArtifactLoader,
	encoder ABIEncoder,
	verifier ContractVerifier,
	records DeploymentRecordStore,
	selector RunSelector,
	picker ContractPicker,
	progress ProgressSink,
	log *slog.Logger,
) *VerifyContracts {
	return &VerifyContracts{
		cfg:       cfg,
		artifacts: artifacts,
		encoder:   encoder,
		verifier:  verifier,
		records:   records,
		selector:  selector,
		picker:    picker,
		progress:  progress,
		log:       log.With("component", "VerifyContracts"),
	}
}

// VerifyOptions contains options for verification
type VerifyOptions struct {
	// Parallel is the number of concurrent verifications, values below 2 run sequentially
	Parallel int
	// DryRun only renders the commands
	DryRun bool
	// Only restricts verification to the given logical names
	Only []string
	// Select asks which recorded run to verify instead of taking the latest
	Select bool
	// Pick asks which contracts of the run to verify when Only is empty
	Pick bool
}

// VerifyAllResult contains the per-contract outcomes in deployment order
type VerifyAllResult struct {
	Summary      *models.DeploymentSummary
	Results      []*models.VerificationResult
	SuccessCount int
	FailedCount  int
}

// VerifyLatest verifies the last recorded deployment run on a chain, 0 picks the newest on any chain
func (uc *VerifyContracts) VerifyLatest(ctx context.Context, chainID uint64, opts VerifyOptions) (*VerifyAllResult, error) {
	summary, err := uc.resolveRun(ctx, chainID, opts.Select)
	if err != nil {
		return nil, err
	}

	if opts.Pick && len(opts.Only) == 0 {
		names, err := uc.picker.PickContracts(ctx, summary, "Select contracts to verify")
		if err != nil {
			return nil, err
		}
		opts.Only = names
	}
	return uc.VerifyAll(ctx, summary, opts)
}

func (uc *VerifyContracts) resolveRun(ctx context.Context, chainID uint64, interactive bool) (*models.DeploymentSummary, error) {
	if interactive {
		runs := slices.DeleteFunc(uc.records.List(ctx), func(r *models.DeploymentSummary) bool {
			return chainID != 0 && r.ChainID != chainID
		})
		return uc.selector.SelectRun(ctx, runs, "Select a deployment run to verify")
	}

	summary, err := uc.records.Latest(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deployment record: %w", err)
	}
	return summary, nil
}

// VerifyAll verifies each deployed contract. A failed verification is recorded in its result
// and never stops the others; the returned error is reserved for cancellation and for names
// in opts.Only that the run doesn't contain.
func (uc *VerifyContracts) VerifyAll(ctx context.Context, summary *models.DeploymentSummary, opts VerifyOptions) (*VerifyAllResult, error) {
	contracts := summary.Contracts
	if len(opts.Only) > 0 {
		logical := summary.Logical()
		if unknown := lo.Uniq(lo.Without(opts.Only, logical...)); len(unknown) > 0 {
			return nil, fmt.Errorf("%w: no contract named %s in the run (recorded: %s)",
				domain.ErrNotFound, strings.Join(unknown, ", "), strings.Join(logical, ", "))
		}
		contracts = slices.DeleteFunc(slices.Clone(contracts), func(c *models.DeployedContract) bool {
			return !slices.Contains(opts.Only, c.Name)
		})
	}

	result := &VerifyAllResult{
		Summary: summary,
		Results: make([]*models.VerificationResult, len(contracts)),
	}

	verifyOne := func(i int, c *models.DeployedContract) {
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "verify",
			Current: i + 1,
			Total:   len(contracts),
			Message: fmt.Sprintf("%s (%s)", c.Name, strings.ToLower(string(c.Kind))),
			Spinner: opts.Parallel < 2,
		})
		result.Results[i] = uc.verifyContract(ctx, summary.ChainID, c, opts.DryRun)
	}

	if opts.Parallel < 2 {
		for i, c := range contracts {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			verifyOne(i, c)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Parallel)
		for i, c := range contracts {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				verifyOne(i, c)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	for _, r := range result.Results {
		switch r.Status {
		case models.VerificationStatusVerified:
			result.SuccessCount++
		case models.VerificationStatusFailed:
			result.FailedCount++
		}
	}

	switch {
	case len(contracts) == 0:
	case opts.DryRun:
		uc.progress.Info(fmt.Sprintf("Prepared %d verification commands", len(contracts)))
	default:
		uc.progress.Info(fmt.Sprintf("Verified %d/%d contracts", result.SuccessCount, len(contracts)))
	}
	for _, r := range result.Results {
		if r.Status == models.VerificationStatusFailed {
			uc.progress.Error(fmt.Sprintf("verification of %s at %s failed", r.Request.Name, r.Request.Address.Hex()))
		}
	}
	return result, nil
}

func (uc *VerifyContracts) verifyContract(ctx context.Context, chainID uint64, c *models.DeployedContract, dryRun bool) *models.VerificationResult {
	start := time.Now()
	req, err := uc.BuildRequest(ctx, chainID, c)
	if err != nil {
		uc.log.Warn("failed to build verification request", "name", c.Name, "kind", c.Kind, "error", err)
		return &models.VerificationResult{
			Request: &models.VerificationRequest{
				Name:         c.Name,
				Kind:         c.Kind,
				ArtifactName: c.ArtifactName,
				Address:      c.Address,
				ChainID:      chainID,
			},
			Status: models.VerificationStatusFailed,
			Error:  fmt.Errorf("%w: %w", domain.ErrVerificationFailed, err).Error(),
		}
	}

	if dryRun {
		return &models.VerificationResult{
			Request: req,
			Status:  models.VerificationStatusSkipped,
			Output:  strings.Join(uc.verifier.Command(req), " "),
		}
	}

	output, err := uc.verifier.Verify(ctx, req)
	result := &models.VerificationResult{
		Request:  req,
		Status:   models.VerificationStatusVerified,
		Output:   output,
		Duration: time.Since(start),
	}
	if err != nil {
		if !errors.Is(err, domain.ErrVerificationFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrVerificationFailed, err)
		}
		result.Status = models.VerificationStatusFailed
		result.Error = err.Error()
		uc.log.Warn("verification failed", "name", c.Name, "kind", c.Kind, "address", c.Address.Hex(), "error", err)
		return result
	}

	uc.log.Info("contract verified", "name", c.Name, "kind", c.Kind, "address", c.Address.Hex())
	return result
}

// BuildRequest assembles the verification request of a recorded contract. The constructor
// arguments are re-encoded from the recorded values instead of reusing deploy-time bytes:
// proxies get abi.encode(implementation, initialize(args)).
func (uc *VerifyContracts) BuildRequest(ctx context.Context, chainID uint64, c *models.DeployedContract) (*models.VerificationRequest, error) {
	var encoded []byte

	if c.IsProxy() {
		logicArtifact, err := uc.artifacts.Load(ctx, c.Name)
		if err != nil {
			return nil, err
		}
		initializer, ok := logicArtifact.ABI.Methods[domain.InitializerName]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrInitializerNotFound, c.Name)
		}
		values, err := uc.encoder.ParseArgs(initializer.Inputs, c.InitializerArgs)
		if err != nil {
			return nil, err
		}
		initData, err := uc.encoder.EncodeInitializer(logicArtifact.ABI, values)
		if err != nil {
			return nil, err
		}
		encoded, err = uc.encoder.EncodeProxyConstructorArgs(c.Implementation, initData)
		if err != nil {
			return nil, err
		}
	} else {
		artifact, err := uc.artifacts.Load(ctx, c.ArtifactName)
		if err != nil {
			return nil, err
		}
		if artifact.CompilerVersion != "" && !domain.CompilerMatches(artifact.CompilerVersion, uc.cfg.CompilerVersion) {
			uc.log.Warn("artifact built with a different compiler, verification will likely fail",
				"name", c.ArtifactName,
				"built", artifact.CompilerVersion,
				"configured", uc.cfg.CompilerVersion)
		}
		values, err := uc.encoder.ParseArgs(artifact.ABI.Constructor.Inputs, c.ConstructorArgs)
		if err != nil {
			return nil, err
		}
		encoded, err = uc.encoder.EncodeConstructorArgs(artifact.ABI, values)
		if err != nil {
			return nil, err
		}
	}

	return &models.VerificationRequest{
		Name:             c.Name,
		Kind:             c.Kind,
		ArtifactName:     c.ArtifactName,
		Address:          c.Address,
		ChainID:          chainID,
		ConstructorArgs:  hex.EncodeToString(encoded),
		CompilerVersion:  uc.cfg.CompilerVersion,
		OptimizationRuns: uc.cfg.OptimizationRuns,
		APIKey:           uc.cfg.EtherscanAPIKey,
	}, nil
}
