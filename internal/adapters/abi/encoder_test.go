package abi

import (
	"math/big"
	"strings"
	"testing"

	"github.com/azoth-protocol/azoth-deploy/internal/domain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const azothABI = `[
	{"type":"constructor","inputs":[{"name":"factory","type":"address"},{"name":"nftManager","type":"address"}],"stateMutability":"nonpayable"},
	{"type":"function","name":"initialize","inputs":[{"name":"owner","type":"address"},{"name":"feeRecipient","type":"address"}],"outputs":[],"stateMutability":"nonpayable"}
]`

const nftManagerABI = `[
	{"type":"constructor","inputs":[{"name":"azoth","type":"address"}],"stateMutability":"nonpayable"},
	{"type":"function","name":"initialize","inputs":[],"outputs":[],"stateMutability":"nonpayable"}
]`

const factoryABI = `[{"type":"function","name":"create","inputs":[{"name":"salt","type":"bytes32"}],"outputs":[],"stateMutability":"nonpayable"}]`

func mustABI(t *testing.T, raw string) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(raw))
	require.NoError(t, err)
	return parsed
}

var (
	owner        = common.HexToAddress("0x1111111111111111111111111111111111111111")
	feeRecipient = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestEncodeInitializer(t *testing.T) {
	enc := NewEncoder()

	t.Run("no arguments is the bare selector", func(t *testing.T) {
		data, err := enc.EncodeInitializer(mustABI(t, nftManagerABI), nil)
		require.NoError(t, err)
		assert.Equal(t, "0x8129fc1c", hexutil.Encode(data))
	})

	t.Run("selector followed by encoded arguments", func(t *testing.T) {
		data, err := enc.EncodeInitializer(mustABI(t, azothABI), []any{owner, feeRecipient})
		require.NoError(t, err)

		selector := crypto.Keccak256([]byte("initialize(address,address)"))[:4]
		require.Len(t, data, 4+64)
		assert.Equal(t, selector, data[:4])
		assert.Equal(t, common.LeftPadBytes(owner.Bytes(), 32), data[4:36])
		assert.Equal(t, common.LeftPadBytes(feeRecipient.Bytes(), 32), data[36:68])
	})

	t.Run("deterministic", func(t *testing.T) {
		contractABI := mustABI(t, azothABI)
		first, err := enc.EncodeInitializer(contractABI, []any{owner, feeRecipient})
		require.NoError(t, err)
		second, err := enc.EncodeInitializer(contractABI, []any{owner, feeRecipient})
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("arity mismatch", func(t *testing.T) {
		_, err := enc.EncodeInitializer(mustABI(t, azothABI), []any{owner})
		assert.ErrorIs(t, err, domain.ErrArgumentArityMismatch)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := enc.EncodeInitializer(mustABI(t, azothABI), []any{owner, "0x2222222222222222222222222222222222222222"})
		assert.ErrorIs(t, err, domain.ErrArgumentTypeMismatch)
	})

	t.Run("nil argument", func(t *testing.T) {
		_, err := enc.EncodeInitializer(mustABI(t, azothABI), []any{owner, nil})
		assert.ErrorIs(t, err, domain.ErrArgumentTypeMismatch)
	})

	t.Run("initializer not found", func(t *testing.T) {
		_, err := enc.EncodeInitializer(mustABI(t, factoryABI), nil)
		assert.ErrorIs(t, err, domain.ErrInitializerNotFound)
	})
}

func TestEncodeConstructorArgs(t *testing.T) {
	enc := NewEncoder()

	t.Run("no constructor", func(t *testing.T) {
		data, err := enc.EncodeConstructorArgs(mustABI(t, factoryABI), nil)
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("no constructor with arguments", func(t *testing.T) {
		_, err := enc.EncodeConstructorArgs(mustABI(t, factoryABI), []any{owner})
		assert.ErrorIs(t, err, domain.ErrArgumentArityMismatch)
	})

	t.Run("address arguments", func(t *testing.T) {
		data, err := enc.EncodeConstructorArgs(mustABI(t, azothABI), []any{owner, feeRecipient})
		require.NoError(t, err)
		expected := append(common.LeftPadBytes(owner.Bytes(), 32), common.LeftPadBytes(feeRecipient.Bytes(), 32)...)
		assert.Equal(t, expected, data)
	})
}

func TestEncodeProxyConstructorArgs(t *testing.T) {
	enc := NewEncoder()
	logic := common.HexToAddress("0x343c43a37d37dff08ae8c4a11544c718abb4fcf8")
	initData, err := enc.EncodeInitializer(mustABI(t, azothABI), []any{owner, feeRecipient})
	require.NoError(t, err)

	got, err := enc.EncodeProxyConstructorArgs(logic, initData)
	require.NoError(t, err)

	// reference encoding from the proxy's own constructor abi
	proxyABI := mustABI(t, `[{"type":"constructor","inputs":[{"name":"implementation","type":"address"},{"name":"_data","type":"bytes"}],"stateMutability":"payable"}]`)
	want, err := proxyABI.Pack("", logic, initData)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	t.Run("empty init data", func(t *testing.T) {
		got, err := enc.EncodeProxyConstructorArgs(logic, nil)
		require.NoError(t, err)
		// address, offset, zero length
		assert.Len(t, got, 96)
	})
}

func TestFormatParseArgs(t *testing.T) {
	enc := NewEncoder()

	tests := []struct {
		name    string
		typ     string
		value   any
		encoded string
	}{
		{"address", "address", owner, owner.Hex()},
		{"uint256", "uint256", big.NewInt(1_000_000), "1000000"},
		{"uint8", "uint8", uint8(7), "7"},
		{"int64", "int64", int64(-3), "-3"},
		{"bool", "bool", true, "true"},
		{"string", "string", "azoth", "azoth"},
		{"bytes", "bytes", []byte{0x81, 0x29, 0xfc, 0x1c}, "0x8129fc1c"},
		{"bytes32", "bytes32", [32]byte{31: 1}, "0x0000000000000000000000000000000000000000000000000000000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, err := abi.NewType(tt.typ, "", nil)
			require.NoError(t, err)

			assert.Equal(t, []string{tt.encoded}, enc.FormatArgs([]any{tt.value}))

			parsed, err := ParseArg(typ, tt.encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.value, parsed)
		})
	}
}

func TestParseArgErrors(t *testing.T) {
	uint8Ty, _ := abi.NewType("uint8", "", nil)
	uint256Ty, _ := abi.NewType("uint256", "", nil)
	addressTy, _ := abi.NewType("address", "", nil)

	_, err := ParseArg(uint8Ty, "256")
	assert.ErrorIs(t, err, domain.ErrArgumentTypeMismatch)

	_, err = ParseArg(uint256Ty, "-1")
	assert.ErrorIs(t, err, domain.ErrArgumentTypeMismatch)

	_, err = ParseArg(addressTy, "owner")
	assert.ErrorIs(t, err, domain.ErrArgumentTypeMismatch)

	_, err = NewEncoder().ParseArgs(abi.Arguments{{Name: "a", Type: addressTy}}, nil)
	assert.ErrorIs(t, err, domain.ErrArgumentArityMismatch)
}

func TestBytes32AcceptsHash(t *testing.T) {
	contractABI := mustABI(t, `[{"type":"constructor","inputs":[{"name":"salt","type":"bytes32"}],"stateMutability":"nonpayable"}]`)
	salt := common.HexToHash("0x01")

	data, err := NewEncoder().EncodeConstructorArgs(contractABI, []any{salt})
	require.NoError(t, err)
	assert.Equal(t, salt.Bytes(), data)
}
