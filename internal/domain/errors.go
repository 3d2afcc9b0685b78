package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for deployment and verification operations
var (
	// ErrConfigMissing is returned before any network call when required settings are absent
	ErrConfigMissing = errors.New("missing configuration")

	// ErrArtifactNotFound is returned when no build output exists for a contract name
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrArtifactMalformed is returned when build output cannot be parsed into abi and bytecode
	ErrArtifactMalformed = errors.New("artifact malformed")

	// ErrChainQueryFailed is returned when a read against the RPC endpoint fails
	ErrChainQueryFailed = errors.New("chain query failed")

	// ErrTransactionFailed is returned when a creation transaction can't be sent, mined or reverts
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrInitializerNotFound is returned when an ABI has no initialize function
	ErrInitializerNotFound = errors.New("initializer not found")

	// ErrArgumentArityMismatch is returned when the argument count differs from the declared inputs
	ErrArgumentArityMismatch = errors.New("argument arity mismatch")

	// ErrArgumentTypeMismatch is returned when an argument doesn't fit its declared ABI type
	ErrArgumentTypeMismatch = errors.New("argument type mismatch")

	// ErrVerificationFailed is returned when the block explorer rejects a verification
	ErrVerificationFailed = errors.New("verification failed")

	// ErrAlreadyRecorded is returned when a deployment is recorded twice under the same name
	ErrAlreadyRecorded = errors.New("already recorded")

	// ErrUnresolvedReference is returned when a step references an address not produced yet
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrInvalidOffset is returned for non-positive nonce offsets
	ErrInvalidOffset = errors.New("invalid nonce offset")

	// ErrPredictionMismatch is returned when a predicted contract lands on a different address
	ErrPredictionMismatch = errors.New("predicted address mismatch")

	// ErrInvalidPlan is returned by plan validation
	ErrInvalidPlan = errors.New("invalid deployment plan")

	// ErrNotFound is returned when a stored record doesn't exist
	ErrNotFound = errors.New("not found")
)

// StepError identifies the plan step that aborted a deployment run
type StepError struct {
	Index int
	Kind  StepKind
	Name  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s %s) failed: %v", e.Index+1, e.Kind, e.Name, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ArtifactNotFoundError carries the names of similar artifacts found in the build output
type ArtifactNotFoundError struct {
	Name        string
	Path        string
	Suggestions []string
}

func (e *ArtifactNotFoundError) Error() string {
	msg := fmt.Sprintf("%s: no build output for %s at %s", ErrArtifactNotFound, e.Name, e.Path)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *ArtifactNotFoundError) Unwrap() error {
	return ErrArtifactNotFound
}
