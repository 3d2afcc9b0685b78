package cli

import (
	"fmt"

	"github.com/azoth-protocol/azoth-deploy/internal/cli/render"
	"github.com/azoth-protocol/azoth-deploy/internal/config"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/models"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

// NewPredictCmd creates the predict command
func NewPredictCmd() *cobra.Command {
	var (
		offset uint64
		sender string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict a CREATE address from the sender's transaction count",
		Long: `Predict the address of a contract created by the sender in a later transaction.

The nonce used is the sender's pending transaction count plus the offset. The
next transaction uses the count itself, so --offset 1 is the one after it. Without --sender the
deployer derived from PRIVATE_KEY is used.

Examples:
  azoth-deploy predict --offset 4
  azoth-deploy predict --sender 0x6ac7ea33f8831ea9dcc53393aaa88b25a785dbf0 --rpc-url http://localhost:8545`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			var prediction *models.Prediction
			if sender != "" {
				if !common.IsHexAddress(sender) {
					return fmt.Errorf("invalid sender address: %q", sender)
				}
				if err := config.Require(app.Config, config.RequireRPC); err != nil {
					return err
				}
				prediction, err = app.PredictAddress.Predict(cmd.Context(), common.HexToAddress(sender), offset)
			} else {
				if err := config.Require(app.Config, config.RequireChain); err != nil {
					return err
				}
				prediction, err = app.PredictAddress.PredictSelf(cmd.Context(), offset)
			}
			if err != nil {
				return err
			}

			return render.NewPredictionRenderer(cmd.OutOrStdout(), outputFormat(app)).Render(prediction)
		},
	}

	cmd.Flags().Uint64Var(&offset, "offset", 1, "Nonce distance from the current transaction count, at least 1")
	cmd.Flags().StringVar(&sender, "sender", "", "Address to predict for (default: the deployer)")

	return cmd
}
