package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/azoth-protocol/azoth-deploy/internal/domain"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/models"
	"github.com/ethereum/go-ethereum/common"
)

// PredictAddress computes where a future creation transaction of a sender will land
type PredictAddress struct {
	chain ChainClient
	log   *slog.Logger
}

// NewPredictAddress creates a new PredictAddress use case
func NewPredictAddress(chain ChainClient, log *slog.Logger) *PredictAddress {
	return &PredictAddress{
		chain: chain,
		log:   log.With("component", "PredictAddress"),
	}
}

// Predict returns the address of the sender's creation transaction offset transactions after
// the next one. The transaction count is read once; nothing is retried because a stale count
// would silently produce a wrong address.
func (uc *PredictAddress) Predict(ctx context.Context, sender common.Address, offset uint64) (*models.Prediction, error) {
	if offset < 1 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidOffset, offset)
	}

	baseline, err := uc.chain.TransactionCount(ctx, sender)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction count of %s: %w", domain.ErrChainQueryFailed, sender.Hex(), err)
	}

	nonce := baseline + offset
	prediction := &models.Prediction{
		Sender:   sender,
		Baseline: baseline,
		Offset:   offset,
		Nonce:    nonce,
		Address:  domain.CreateAddress(sender, nonce),
	}

	uc.log.Debug("predicted address",
		"sender", sender.Hex(),
		"baseline", baseline,
		"nonce", nonce,
		"address", prediction.Address.Hex())

	return prediction, nil
}

// PredictSelf predicts for the chain client's own sender
func (uc *PredictAddress) PredictSelf(ctx context.Context, offset uint64) (*models.Prediction, error) {
	return uc.Predict(ctx, uc.chain.Sender(), offset)
}
