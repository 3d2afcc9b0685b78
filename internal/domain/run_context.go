package domain

import (
	"fmt"
	"slices"

	"github.com/azoth-protocol/azoth-deploy/internal/domain/models"
	"github.com/ethereum/go-ethereum/common"
)

type contractKey struct {
	name string
	kind models.ContractKind
}

// RunContext is the state of one deployment run. It is owned by the orchestrator and only
// grows: a name recorded once can't be overwritten.
type RunContext struct {
	Sender  common.Address
	ChainID uint64

	contracts   []*models.DeployedContract
	byKey       map[contractKey]*models.DeployedContract
	predictions []*models.Prediction
	predicted   map[string]*models.Prediction
}

// NewRunContext creates an empty run context for the given deployer
func NewRunContext(sender common.Address, chainID uint64) *RunContext {
	return &RunContext{
		Sender:    sender,
		ChainID:   chainID,
		byKey:     make(map[contractKey]*models.DeployedContract),
		predicted: make(map[string]*models.Prediction),
	}
}

// Record appends a confirmed deployment
func (rc *RunContext) Record(c *models.DeployedContract) error {
	key := contractKey{name: c.Name, kind: c.Kind}
	if _, exists := rc.byKey[key]; exists {
		return fmt.Errorf("%w: %s (%s)", ErrAlreadyRecorded, c.Name, c.Kind)
	}
	rc.byKey[key] = c
	rc.contracts = append(rc.contracts, c)
	return nil
}

// RecordPrediction stores the predicted address of name
func (rc *RunContext) RecordPrediction(p *models.Prediction) error {
	if _, exists := rc.predicted[p.Name]; exists {
		return fmt.Errorf("%w: prediction for %s", ErrAlreadyRecorded, p.Name)
	}
	rc.predicted[p.Name] = p
	rc.predictions = append(rc.predictions, p)
	return nil
}

// Lookup returns the contract recorded under name and kind
func (rc *RunContext) Lookup(name string, kind models.ContractKind) (*models.DeployedContract, bool) {
	c, ok := rc.byKey[contractKey{name: name, kind: kind}]
	return c, ok
}

// Address returns the address a logical name currently resolves to
func (rc *RunContext) Address(name string) (common.Address, bool) {
	if c, ok := rc.Lookup(name, models.ProxyContract); ok {
		return c.Address, true
	}
	if c, ok := rc.Lookup(name, models.LogicContract); ok {
		return c.Address, true
	}
	return common.Address{}, false
}

// Prediction returns the prediction recorded for name
func (rc *RunContext) Prediction(name string) (*models.Prediction, bool) {
	p, ok := rc.predicted[name]
	return p, ok
}

// Resolve turns a plan argument into the value handed to the encoder
func (rc *RunContext) Resolve(arg Arg) (any, error) {
	switch arg.Kind {
	case ArgValue:
		return arg.Value, nil
	case ArgRef:
		if addr, ok := rc.Address(arg.Ref); ok {
			return addr, nil
		}
	case ArgImpl:
		if c, ok := rc.Lookup(arg.Ref, models.LogicContract); ok {
			return c.Address, nil
		}
	case ArgPredicted:
		if p, ok := rc.Prediction(arg.Ref); ok {
			return p.Address, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnresolvedReference, arg)
}

// ResolveAll resolves every argument in order
func (rc *RunContext) ResolveAll(args []Arg) ([]any, error) {
	values := make([]any, 0, len(args))
	for _, arg := range args {
		v, err := rc.Resolve(arg)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Contracts returns the recorded deployments in order
func (rc *RunContext) Contracts() []*models.DeployedContract {
	return slices.Clone(rc.contracts)
}

// Predictions returns the recorded predictions in order
func (rc *RunContext) Predictions() []*models.Prediction {
	return slices.Clone(rc.predictions)
}
