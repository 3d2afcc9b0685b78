package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/azoth-protocol/azoth-deploy/internal/domain"
	"github.com/azoth-protocol/azoth-deploy/internal/usecase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createAddressReference derives keccak256(rlp([sender, nonce]))[12:] without going through
// crypto.CreateAddress
func createAddressReference(t *testing.T, sender common.Address, nonce uint64) common.Address {
	t.Helper()
	encoded, err := rlp.EncodeToBytes([]any{sender, nonce})
	require.NoError(t, err)
	return common.BytesToAddress(crypto.Keccak256(encoded)[12:])
}

func TestPredictAddress(t *testing.T) {
	ctx := context.Background()

	t.Run("known vectors", func(t *testing.T) {
		tests := []struct {
			baseline uint64
			offset   uint64
			want     string
		}{
			{baseline: 0, offset: 1, want: "0x343c43a37d37dff08ae8c4a11544c718abb4fcf8"},
			{baseline: 0, offset: 2, want: "0xf778b86fa74e846c4f0a1fbd1335fe81c00a0c91"},
			{baseline: 1, offset: 2, want: "0xfffd933a0bc612844eaf0c6fe3e5b8e9b6c1d19c"},
			{baseline: 2, offset: 1, want: "0xfffd933a0bc612844eaf0c6fe3e5b8e9b6c1d19c"},
		}
		for _, tt := range tests {
			chain := newFakeChain(tt.baseline)
			uc := usecase.NewPredictAddress(chain, discardLogger())

			p, err := uc.Predict(ctx, deployer, tt.offset)
			require.NoError(t, err)
			assert.Equal(t, common.HexToAddress(tt.want), p.Address)
			assert.Equal(t, tt.baseline, p.Baseline)
			assert.Equal(t, tt.offset, p.Offset)
			assert.Equal(t, tt.baseline+tt.offset, p.Nonce)
			assert.Equal(t, deployer, p.Sender)
		}
	})

	t.Run("matches rlp derivation", func(t *testing.T) {
		for _, baseline := range []uint64{0, 1, 0x7f, 0x80, 0xff, 0x100, 1 << 32} {
			chain := newFakeChain(baseline)
			uc := usecase.NewPredictAddress(chain, discardLogger())

			p, err := uc.Predict(ctx, deployer, 3)
			require.NoError(t, err)
			assert.Equal(t, createAddressReference(t, deployer, baseline+3), p.Address, "baseline %d", baseline)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		uc := usecase.NewPredictAddress(newFakeChain(7), discardLogger())
		a, err := uc.Predict(ctx, deployer, 3)
		require.NoError(t, err)
		b, err := uc.Predict(ctx, deployer, 3)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("lands on the address the chain deploys to", func(t *testing.T) {
		chain := newFakeChain(5)
		uc := usecase.NewPredictAddress(chain, discardLogger())

		p, err := uc.PredictSelf(ctx, 2)
		require.NoError(t, err)

		var last common.Address
		for i := 0; i < 3; i++ {
			pending, err := chain.Deploy(ctx, []byte{0x00}, nil)
			require.NoError(t, err)
			last, err = pending.Wait(ctx)
			require.NoError(t, err)
		}
		assert.Equal(t, p.Address, last)
	})

	t.Run("rejects zero offset", func(t *testing.T) {
		chain := newFakeChain(0)
		chain.countErr = errors.New("must not be called")
		uc := usecase.NewPredictAddress(chain, discardLogger())

		_, err := uc.Predict(ctx, deployer, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidOffset)
	})

	t.Run("chain query failure", func(t *testing.T) {
		chain := newFakeChain(0)
		chain.countErr = errors.New("connection refused")
		uc := usecase.NewPredictAddress(chain, discardLogger())

		_, err := uc.Predict(ctx, deployer, 1)
		assert.ErrorIs(t, err, domain.ErrChainQueryFailed)
		assert.Contains(t, err.Error(), "connection refused")
	})
}
