package cli

import (
	"fmt"

	"github.com/azoth-protocol/azoth-deploy/internal/cli/render"
	"github.com/azoth-protocol/azoth-deploy/internal/config"
	"github.com/azoth-protocol/azoth-deploy/internal/usecase"
	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var (
		selectFlag bool
		pickFlag   bool
	)

	cmd := &cobra.Command{
		Use:   "verify [name...]",
		Short: "Verify a recorded deployment run with forge",
		Long: `Verify the contracts of the latest recorded deployment run on the block explorer.

Constructor arguments are re-encoded from the recorded values, so a run that
stopped halfway can be verified as far as it got. Names restrict verification
to the given logical contracts, each together with its proxy.

Examples:
  azoth-deploy verify                       # Verify the latest run
  azoth-deploy verify Azoth                 # Azoth logic and its proxy only
  azoth-deploy verify --chain-id 11155111   # Latest run on Sepolia
  azoth-deploy verify --select              # Pick a run interactively
  azoth-deploy verify --pick                # Pick contracts of the latest run interactively
  azoth-deploy verify --dry-run             # Print the forge commands`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			cfg := app.Config
			if pickFlag && len(args) > 0 {
				return fmt.Errorf("--pick cannot be combined with contract names")
			}
			if err := config.Require(cfg, config.RequireVerify); err != nil {
				return err
			}

			result, err := app.VerifyContracts.VerifyLatest(cmd.Context(), cfg.ChainID, usecase.VerifyOptions{
				Parallel: cfg.Parallel,
				DryRun:   cfg.DryRun,
				Only:     args,
				Select:   selectFlag,
				Pick:     pickFlag,
			})
			if err != nil {
				return err
			}

			return render.NewVerifyRenderer(cmd.OutOrStdout(), outputFormat(app), cfg.Debug).Render(result)
		},
	}

	cmd.Flags().Int("parallel", 1, "Number of contracts verified concurrently")
	cmd.Flags().Bool("dry-run", false, "Print the forge commands without running them")
	cmd.Flags().BoolVar(&selectFlag, "select", false, "Choose the deployment run interactively")
	cmd.Flags().BoolVar(&pickFlag, "pick", false, "Choose the contracts to verify interactively")

	return cmd
}
