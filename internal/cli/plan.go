package cli

import (
	"github.com/azoth-protocol/azoth-deploy/internal/cli/render"
	"github.com/azoth-protocol/azoth-deploy/internal/domain"
	"github.com/spf13/cobra"
)

// NewPlanCmd creates the plan command
func NewPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the deployment steps without sending anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			plan := domain.AzothPlan(app.Config.Owner, app.Config.FeeRecipient)
			if err := plan.Validate(); err != nil {
				return err
			}
			return render.NewPlanRenderer(cmd.OutOrStdout(), outputFormat(app)).Render(plan)
		},
	}
}
