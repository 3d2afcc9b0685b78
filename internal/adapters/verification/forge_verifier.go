package verification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/azoth-protocol/azoth-deploy/internal/domain"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/config"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/models"
	"github.com/azoth-protocol/azoth-deploy/internal/usecase"
	"github.com/creack/pty"
)

// apiKeyPlaceholder stands in for the explorer key in printed commands
const apiKeyPlaceholder = "$ETHERSCAN_API_KEY"

// ForgeVerifier verifies contracts with forge verify-contract
type ForgeVerifier struct {
	projectRoot string
	binary      string
	debug       bool
	out         io.Writer
	log         *slog.Logger
}

// NewForgeVerifier creates a new forge verifier
func NewForgeVerifier(cfg *config.RuntimeConfig, log *slog.Logger) *ForgeVerifier {
	return &ForgeVerifier{
		projectRoot: cfg.ProjectRoot,
		binary:      "forge",
		debug:       cfg.Debug,
		out:         os.Stderr,
		log:         log.With("component", "ForgeVerifier"),
	}
}

// Verify runs forge verify-contract and returns its output. Already verified contracts
// count as verified.
func (v *ForgeVerifier) Verify(ctx context.Context, req *models.VerificationRequest) (string, error) {
	args := v.buildArgs(req, req.APIKey)
	v.log.Debug("running forge", "args", strings.Join(v.buildArgs(req, apiKeyPlaceholder), " "))

	output, err := v.execute(ctx, args)
	return output, classify(output, err)
}

// Command returns the forge invocation for req with the API key left as an environment
// variable reference
func (v *ForgeVerifier) Command(req *models.VerificationRequest) []string {
	return append([]string{v.binary}, v.buildArgs(req, apiKeyPlaceholder)...)
}

// buildArgs builds the forge verify-contract args for Etherscan
func (v *ForgeVerifier) buildArgs(req *models.VerificationRequest, apiKey string) []string {
	args := []string{
		"verify-contract",
		"--chain-id", strconv.FormatUint(req.ChainID, 10),
		"--num-of-optimizations", strconv.Itoa(req.OptimizationRuns),
		"--watch",
	}
	if req.ConstructorArgs != "" {
		args = append(args, "--constructor-args", strings.TrimPrefix(req.ConstructorArgs, "0x"))
	}
	if apiKey != "" {
		args = append(args, "--etherscan-api-key", apiKey)
	}
	if req.CompilerVersion != "" {
		args = append(args, "--compiler-version", req.CompilerVersion)
	}
	return append(args, req.Address.Hex(), req.ArtifactName)
}

// execute runs forge in the project root. In debug mode the output is streamed through a
// pty so forge keeps its progress output and colors.
func (v *ForgeVerifier) execute(ctx context.Context, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, v.binary, args...)
	cmd.Dir = v.projectRoot

	if !v.debug {
		output, err := cmd.CombinedOutput()
		return string(output), err
	}

	ptyFile, err := pty.Start(cmd)
	if err != nil {
		return "", fmt.Errorf("failed to start pty: %w", err)
	}
	defer func() {
		_ = ptyFile.Close()
	}()

	// Reading the pty fails with EIO once forge exits, which just ends the copy
	var buf bytes.Buffer
	_, _ = io.Copy(io.MultiWriter(v.out, &buf), ptyFile)

	err = cmd.Wait()
	return buf.String(), err
}

func classify(output string, err error) error {
	if isAlreadyVerified(output) {
		return nil
	}
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: forge not found in PATH", domain.ErrVerificationFailed)
		}
		return fmt.Errorf("%w: %v: %s", domain.ErrVerificationFailed, err, strings.TrimSpace(output))
	}
	if strings.Contains(output, "Contract successfully verified") {
		return nil
	}
	return fmt.Errorf("%w: verification status unclear: %s", domain.ErrVerificationFailed, strings.TrimSpace(output))
}

func isAlreadyVerified(output string) bool {
	return strings.Contains(output, "Already Verified") ||
		strings.Contains(output, "is already verified") ||
		strings.Contains(output, "already verified")
}

// Ensure it implements the interface
var _ usecase.ContractVerifier = (*ForgeVerifier)(nil)
