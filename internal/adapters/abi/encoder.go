package abi

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"

	"github.com/azoth-protocol/azoth-deploy/internal/domain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var bigIntType = reflect.TypeOf(&big.Int{})

// proxyConstructor is the argument list of ERC1967Proxy(address implementation, bytes data)
var proxyConstructor = func() abi.Arguments {
	addressTy, _ := abi.NewType("address", "", nil)
	bytesTy, _ := abi.NewType("bytes", "", nil)
	return abi.Arguments{
		{Name: "implementation", Type: addressTy},
		{Name: "data", Type: bytesTy},
	}
}()

// Encoder builds initializer call data and constructor arguments. It holds no state, so
// identical inputs always produce identical bytes.
type Encoder struct{}

// NewEncoder creates a new ABI encoder
func NewEncoder() *Encoder {
	return &Encoder{}
}

// EncodeInitializer returns the call data of initialize(args): selector followed by the
// encoded arguments
func (e *Encoder) EncodeInitializer(contractABI abi.ABI, args []any) ([]byte, error) {
	method, ok := contractABI.Methods[domain.InitializerName]
	if !ok {
		return nil, fmt.Errorf("%w: no %s function in abi", domain.ErrInitializerNotFound, domain.InitializerName)
	}

	packed, err := pack(method.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method.Sig, err)
	}

	data := make([]byte, 0, len(method.ID)+len(packed))
	data = append(data, method.ID...)
	return append(data, packed...), nil
}

// EncodeConstructorArgs returns the encoded constructor arguments appended to creation code.
// An ABI without constructor accepts no arguments.
func (e *Encoder) EncodeConstructorArgs(contractABI abi.ABI, args []any) ([]byte, error) {
	packed, err := pack(contractABI.Constructor.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("constructor: %w", err)
	}
	return packed, nil
}

// EncodeProxyConstructorArgs returns abi.encode(logic, initData)
func (e *Encoder) EncodeProxyConstructorArgs(logic common.Address, initData []byte) ([]byte, error) {
	if initData == nil {
		initData = []byte{}
	}
	return proxyConstructor.Pack(logic, initData)
}

// FormatArgs renders values in the canonical form ParseArgs reads back
func (e *Encoder) FormatArgs(args []any) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = FormatArg(a)
	}
	return out
}

// ParseArgs parses persisted values against the declared inputs
func (e *Encoder) ParseArgs(inputs abi.Arguments, values []string) ([]any, error) {
	if len(values) != len(inputs) {
		return nil, fmt.Errorf("%w: %d values for %d inputs", domain.ErrArgumentArityMismatch, len(values), len(inputs))
	}
	args := make([]any, len(values))
	for i, in := range inputs {
		v, err := ParseArg(in.Type, values[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, in.Name, err)
		}
		args[i] = v
	}
	return args, nil
}

// pack checks arity and Go types against the inputs before handing them to go-ethereum
func pack(inputs abi.Arguments, args []any) ([]byte, error) {
	if len(args) != len(inputs) {
		return nil, fmt.Errorf("%w: got %d arguments, want %d", domain.ErrArgumentArityMismatch, len(args), len(inputs))
	}
	if len(inputs) == 0 {
		return []byte{}, nil
	}

	values := make([]any, len(args))
	for i, in := range inputs {
		v, err := coerce(in, args[i])
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	packed, err := inputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArgumentTypeMismatch, err)
	}
	return packed, nil
}

// coerce accepts a value whose Go type is the one go-ethereum maps the ABI type to, or a
// named byte array of the same length (common.Hash for bytes32)
func coerce(in abi.Argument, v any) (any, error) {
	switch in.Type.T {
	case abi.TupleTy, abi.SliceTy, abi.ArrayTy:
		// composite values are checked by Pack
		return v, nil
	}

	want := in.Type.GetType()
	if v == nil {
		return nil, fmt.Errorf("%w: %s is nil, want %s", domain.ErrArgumentTypeMismatch, in.Name, in.Type)
	}
	got := reflect.TypeOf(v)
	if got == want {
		return v, nil
	}
	if got.Kind() == reflect.Array && want.Kind() == reflect.Array &&
		got.Len() == want.Len() && got.Elem() == want.Elem() {
		return reflect.ValueOf(v).Convert(want).Interface(), nil
	}
	return nil, fmt.Errorf("%w: %s is %T, want %s", domain.ErrArgumentTypeMismatch, in.Name, v, in.Type)
}

// FormatArg renders a value as text: hex for addresses and bytes, decimal for integers
func FormatArg(v any) string {
	switch x := v.(type) {
	case common.Address:
		return x.Hex()
	case common.Hash:
		return x.Hex()
	case *big.Int:
		return x.String()
	case []byte:
		return hexutil.Encode(x)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		return hexutil.Encode(b)
	}
	return fmt.Sprintf("%v", v)
}

// ParseArg reads a value written by FormatArg back into the Go type of t
func ParseArg(t abi.Type, s string) (any, error) {
	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("%w: %q is not an address", domain.ErrArgumentTypeMismatch, s)
		}
		return common.HexToAddress(s), nil

	case abi.BoolTy:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a bool", domain.ErrArgumentTypeMismatch, s)
		}
		return b, nil

	case abi.StringTy:
		return s, nil

	case abi.BytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not hex bytes: %v", domain.ErrArgumentTypeMismatch, s, err)
		}
		return b, nil

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil || len(b) != t.Size {
			return nil, fmt.Errorf("%w: %q is not %s", domain.ErrArgumentTypeMismatch, s, t)
		}
		v := reflect.New(t.GetType()).Elem()
		reflect.Copy(v, reflect.ValueOf(b))
		return v.Interface(), nil

	case abi.UintTy, abi.IntTy:
		return parseInteger(t, s)
	}

	return nil, fmt.Errorf("%w: can't parse %s values", domain.ErrArgumentTypeMismatch, t)
}

func parseInteger(t abi.Type, s string) (any, error) {
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not an integer", domain.ErrArgumentTypeMismatch, s)
	}
	if t.T == abi.UintTy && n.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s is negative for %s", domain.ErrArgumentTypeMismatch, s, t)
	}

	want := t.GetType()
	if want == bigIntType {
		return n, nil
	}

	v := reflect.New(want).Elem()
	switch want.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if !n.IsUint64() || v.OverflowUint(n.Uint64()) {
			return nil, fmt.Errorf("%w: %s overflows %s", domain.ErrArgumentTypeMismatch, s, t)
		}
		v.SetUint(n.Uint64())
	default:
		if !n.IsInt64() || v.OverflowInt(n.Int64()) {
			return nil, fmt.Errorf("%w: %s overflows %s", domain.ErrArgumentTypeMismatch, s, t)
		}
		v.SetInt(n.Int64())
	}
	return v.Interface(), nil
}
