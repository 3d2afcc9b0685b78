//go:build wireinject
// +build wireinject

package app

import (
	"github.com/azoth-protocol/azoth-deploy/internal/adapters"
	"github.com/azoth-protocol/azoth-deploy/internal/config"
	"github.com/azoth-protocol/azoth-deploy/internal/logging"
	"github.com/azoth-protocol/azoth-deploy/internal/usecase"
	"github.com/google/wire"
	"github.com/spf13/viper"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewPredictAddress,
		usecase.NewDeployContracts,
		usecase.NewVerifyContracts,

		// App
		NewApp,
	)
	return nil, nil
}
