package cli

import (
	"fmt"

	"github.com/azoth-protocol/azoth-deploy/internal/cli/render"
	"github.com/azoth-protocol/azoth-deploy/internal/config"
	"github.com/azoth-protocol/azoth-deploy/internal/domain"
	"github.com/azoth-protocol/azoth-deploy/internal/usecase"
	"github.com/spf13/cobra"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the Azoth suite and verify it",
		Long: `Deploy Factory, Azoth and NFTManager from the configured deployer, in this order:

  1. Factory
  2. predict the NFTManager proxy address (transaction count + 3)
  3. Azoth(factory, predicted NFTManager)
  4. ERC1967Proxy(Azoth, initialize(OWNER, FEE_RECIPIENT))
  5. NFTManager(Azoth proxy)
  6. ERC1967Proxy(NFTManager, initialize())

Every contract is verified with forge afterwards unless --skip-verify is set.
A failed step stops the run. Contracts confirmed before it stay deployed and
are recorded, so they can still be verified with 'azoth-deploy verify'.

Configuration is read from flags, AZOTH_* variables, the plain RPC_URL,
PRIVATE_KEY, OWNER, FEE_RECIPIENT and ETHERSCAN_API_KEY variables, and .env.

Examples:
  azoth-deploy deploy --network sepolia
  azoth-deploy deploy --rpc-url http://localhost:8545 --skip-verify --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			cfg := app.Config
			if err := config.Require(cfg, config.RequireDeploy); err != nil {
				return err
			}

			plan := domain.AzothPlan(cfg.Owner, cfg.FeeRecipient)
			ok, err := app.Confirmer.Confirm(fmt.Sprintf("Send %d transactions from %s", plan.Transactions(), cfg.Sender.Hex()))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("deployment cancelled")
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			format := outputFormat(app)

			summary, runErr := app.DeployContracts.Run(ctx, usecase.DeployParams{
				Plan:         plan,
				Owner:        cfg.Owner,
				FeeRecipient: cfg.FeeRecipient,
				ChainID:      cfg.ChainID,
			})

			if format == render.FormatText && summary != nil {
				if err := render.NewSummaryRenderer(out, format).Render(summary); err != nil {
					return err
				}
			}

			var result *usecase.VerifyAllResult
			if runErr == nil && !cfg.SkipVerify {
				// Verification failures are reported per contract and never fail the command
				result, err = app.VerifyContracts.VerifyAll(ctx, summary, usecase.VerifyOptions{
					Parallel: cfg.Parallel,
				})
				if err != nil {
					return err
				}
			}

			if format != render.FormatText {
				if err := render.RenderDeployReport(out, format, summary, result, runErr); err != nil {
					return err
				}
			} else if result != nil {
				if err := render.NewVerifyRenderer(out, format, cfg.Debug).Render(result); err != nil {
					return err
				}
			}

			return runErr
		},
	}

	cmd.Flags().Bool("skip-verify", false, "Don't verify the deployed contracts")
	cmd.Flags().Int("parallel", 1, "Number of contracts verified concurrently")

	return cmd
}
