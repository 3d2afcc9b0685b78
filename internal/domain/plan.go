package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// ProxyArtifactName is the upgradeable proxy implementation shared by every proxied contract
	ProxyArtifactName = "ERC1967Proxy"

	// InitializerName is the one-time setup function invoked through the proxy constructor
	InitializerName = "initialize"
)

// StepKind identifies what a plan step does
type StepKind string

const (
	StepDeployLogic StepKind = "deploy"
	StepDeployProxy StepKind = "proxy"
	StepPredict     StepKind = "predict"
)

// IsTransaction reports whether the step sends a transaction from the deployer
func (k StepKind) IsTransaction() bool {
	return k == StepDeployLogic || k == StepDeployProxy
}

// ArgKind describes where an argument value comes from
type ArgKind int

const (
	// ArgValue is a literal value passed as-is to the encoder
	ArgValue ArgKind = iota
	// ArgRef resolves to the proxy of a logical name if one exists, else its logic contract
	ArgRef
	// ArgImpl resolves to the logic contract of a logical name
	ArgImpl
	// ArgPredicted resolves to the address predicted for a logical name
	ArgPredicted
)

// Arg is a constructor or initializer argument
type Arg struct {
	Kind  ArgKind
	Ref   string
	Value any
}

// Value wraps a literal argument
func Value(v any) Arg { return Arg{Kind: ArgValue, Value: v} }

// Ref references the address a logical name resolves to at the time the step runs
func Ref(name string) Arg { return Arg{Kind: ArgRef, Ref: name} }

// Impl references the logic contract deployed for a logical name
func Impl(name string) Arg { return Arg{Kind: ArgImpl, Ref: name} }

// Predicted references the address predicted for a logical name
func Predicted(name string) Arg { return Arg{Kind: ArgPredicted, Ref: name} }

func (a Arg) String() string {
	switch a.Kind {
	case ArgRef:
		return a.Ref
	case ArgImpl:
		return a.Ref + "#impl"
	case ArgPredicted:
		return "predicted:" + a.Ref
	default:
		if addr, ok := a.Value.(common.Address); ok {
			return addr.Hex()
		}
		return fmt.Sprintf("%v", a.Value)
	}
}

// Step is a single entry of a deployment plan
type Step struct {
	Kind StepKind
	// Name is the logical contract name; for predict steps it is the prediction target
	Name string
	// Args are constructor args for logic deployments and initializer args for proxies
	Args []Arg
}

// DeployLogic deploys the artifact called name with the given constructor args
func DeployLogic(name string, args ...Arg) Step {
	return Step{Kind: StepDeployLogic, Name: name, Args: args}
}

// DeployProxy deploys an ERC1967 proxy in front of the logic contract called name
// and runs initialize(args) through it
func DeployProxy(name string, args ...Arg) Step {
	return Step{Kind: StepDeployProxy, Name: name, Args: args}
}

// Predict records the future address of the final deployment for target
func Predict(target string) Step {
	return Step{Kind: StepPredict, Name: target}
}

func (s Step) String() string {
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.String()
	}
	switch s.Kind {
	case StepDeployProxy:
		return fmt.Sprintf("%s(%s#impl, initialize(%s))", ProxyArtifactName, s.Name, strings.Join(args, ", "))
	case StepPredict:
		return fmt.Sprintf("predict %s", s.Name)
	default:
		return fmt.Sprintf("%s(%s)", s.Name, strings.Join(args, ", "))
	}
}

// DeploymentPlan is the ordered list of steps of a run
type DeploymentPlan struct {
	Steps []Step
}

// Transactions returns the number of transactions the plan sends
func (p *DeploymentPlan) Transactions() int {
	n := 0
	for _, s := range p.Steps {
		if s.Kind.IsTransaction() {
			n++
		}
	}
	return n
}

// PredictionTarget returns the index of the step whose address the predict step at i forecasts.
// That is the last deployment of the target name, so a proxy wins over its logic contract.
func (p *DeploymentPlan) PredictionTarget(i int) (int, error) {
	if i < 0 || i >= len(p.Steps) || p.Steps[i].Kind != StepPredict {
		return 0, fmt.Errorf("%w: step %d is not a prediction", ErrInvalidPlan, i+1)
	}
	target := -1
	for j := i + 1; j < len(p.Steps); j++ {
		if p.Steps[j].Kind.IsTransaction() && p.Steps[j].Name == p.Steps[i].Name {
			target = j
		}
	}
	if target < 0 {
		return 0, fmt.Errorf("%w: %s is predicted but never deployed", ErrInvalidPlan, p.Steps[i].Name)
	}
	return target, nil
}

// PredictionOffset returns the number of deployer transactions sent between the predict
// step at i and the deployment of its target. Added to the transaction count observed at
// step i it gives the target's creation nonce.
func (p *DeploymentPlan) PredictionOffset(i int) (uint64, error) {
	target, err := p.PredictionTarget(i)
	if err != nil {
		return 0, err
	}
	var offset uint64
	for j := i + 1; j < target; j++ {
		if p.Steps[j].Kind.IsTransaction() {
			offset++
		}
	}
	return offset, nil
}

// Validate checks that every argument only references addresses produced by earlier
// steps or by an earlier prediction
func (p *DeploymentPlan) Validate() error {
	logic := map[string]bool{}
	proxies := map[string]bool{}
	predicted := map[string]bool{}

	checkArgs := func(i int, s Step) error {
		for _, a := range s.Args {
			ok := true
			switch a.Kind {
			case ArgRef:
				ok = logic[a.Ref] || proxies[a.Ref]
			case ArgImpl:
				ok = logic[a.Ref]
			case ArgPredicted:
				ok = predicted[a.Ref]
			}
			if !ok {
				return fmt.Errorf("%w: step %d (%s %s) references %s before it exists", ErrInvalidPlan, i+1, s.Kind, s.Name, a)
			}
		}
		return nil
	}

	for i, s := range p.Steps {
		if s.Name == "" {
			return fmt.Errorf("%w: step %d has no name", ErrInvalidPlan, i+1)
		}
		switch s.Kind {
		case StepPredict:
			if predicted[s.Name] {
				return fmt.Errorf("%w: %s is predicted twice", ErrInvalidPlan, s.Name)
			}
			offset, err := p.PredictionOffset(i)
			if err != nil {
				return err
			}
			if offset == 0 {
				return fmt.Errorf("%w: prediction of %s is not used before it is deployed", ErrInvalidPlan, s.Name)
			}
			predicted[s.Name] = true
		case StepDeployLogic:
			if logic[s.Name] {
				return fmt.Errorf("%w: %s is deployed twice", ErrInvalidPlan, s.Name)
			}
			if err := checkArgs(i, s); err != nil {
				return err
			}
			logic[s.Name] = true
		case StepDeployProxy:
			if !logic[s.Name] {
				return fmt.Errorf("%w: proxy for %s deployed before its logic contract", ErrInvalidPlan, s.Name)
			}
			if proxies[s.Name] {
				return fmt.Errorf("%w: proxy for %s is deployed twice", ErrInvalidPlan, s.Name)
			}
			if err := checkArgs(i, s); err != nil {
				return err
			}
			proxies[s.Name] = true
		default:
			return fmt.Errorf("%w: unknown step kind %q", ErrInvalidPlan, s.Kind)
		}
	}
	return nil
}

// AzothPlan is the deployment sequence of the Azoth suite. Azoth trusts the NFTManager
// proxy, which only exists three transactions later, so its address is predicted right
// after the Factory is confirmed.
func AzothPlan(owner, feeRecipient common.Address) *DeploymentPlan {
	return &DeploymentPlan{
		Steps: []Step{
			DeployLogic("Factory"),
			Predict("NFTManager"),
			DeployLogic("Azoth", Ref("Factory"), Predicted("NFTManager")),
			DeployProxy("Azoth", Value(owner), Value(feeRecipient)),
			DeployLogic("NFTManager", Ref("Azoth")),
			DeployProxy("NFTManager"),
		},
	}
}
