package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/azoth-protocol/azoth-deploy/internal/adapters/progress"
	"github.com/azoth-protocol/azoth-deploy/internal/app"
	"github.com/azoth-protocol/azoth-deploy/internal/cli/render"
	"github.com/azoth-protocol/azoth-deploy/internal/config"
	"github.com/azoth-protocol/azoth-deploy/internal/usecase"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "azoth-deploy",
		Short: "Deploy and verify the Azoth contract suite",
		Long: `azoth-deploy deploys the Azoth contract suite from Foundry build output:
Factory, Azoth behind an ERC1967 proxy and NFTManager behind an ERC1967 proxy.
The NFTManager proxy address is predicted before Azoth is deployed, and every
contract is verified on the block explorer with forge once the run completes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			// Find project root
			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			// Set up viper with the command's flags bound
			v := config.SetupViper(projectRoot, cmd)

			if _, err := render.ParseFormat(v.GetString("output")); err != nil {
				return err
			}

			// Initialize app with DI
			appInstance, err := app.InitApp(v, newProgressSink(v))
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			// Store app in context
			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			// Add timeout if configured
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				// Store cancel func to be called on command completion
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}

			cmd.SetContext(ctx)

			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "Skip confirmation prompts")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "Output format (text, json, yaml)")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network from foundry.toml [rpc_endpoints]")
	rootCmd.PersistentFlags().String("rpc-url", "", "RPC endpoint (overrides RPC_URL)")
	rootCmd.PersistentFlags().String("profile", "default", "Foundry profile used to locate build output")
	rootCmd.PersistentFlags().Uint64("chain-id", 0, "Expected chain id, 0 accepts whatever the endpoint reports")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Abort the command after this duration (default 15m)")

	// Add command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "inspect",
		Title: "Inspection Commands",
	})

	// Main commands
	deployCmd := NewDeployCmd()
	deployCmd.GroupID = "main"
	rootCmd.AddCommand(deployCmd)

	verifyCmd := NewVerifyCmd()
	verifyCmd.GroupID = "main"
	rootCmd.AddCommand(verifyCmd)

	// Inspection commands
	planCmd := NewPlanCmd()
	planCmd.GroupID = "inspect"
	rootCmd.AddCommand(planCmd)

	predictCmd := NewPredictCmd()
	predictCmd.GroupID = "inspect"
	rootCmd.AddCommand(predictCmd)

	// Version command
	versionCmd := NewVersionCmd()
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// newProgressSink shows spinners only for interactive text output
func newProgressSink(v *viper.Viper) usecase.ProgressSink {
	if v.GetBool("non_interactive") || v.GetString("output") != string(render.FormatText) || isNonInteractive() {
		return progress.NewNopSink()
	}
	return progress.NewSpinnerSink()
}

// isNonInteractive checks if the environment is non-interactive
func isNonInteractive() bool {
	return os.Getenv("AZOTH_NON_INTERACTIVE") == "true" ||
		os.Getenv("CI") == "true" ||
		os.Getenv("NO_COLOR") != ""
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}

// outputFormat returns the validated --output value
func outputFormat(a *app.App) render.Format {
	format, err := render.ParseFormat(a.Config.Output)
	if err != nil {
		return render.FormatText
	}
	return format
}
