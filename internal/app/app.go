package app

import (
	"log/slog"

	"github.com/azoth-protocol/azoth-deploy/internal/domain/config"
	"github.com/azoth-protocol/azoth-deploy/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Confirmer usecase.Confirmer
	Records   usecase.DeploymentRecordStore

	// Use cases
	PredictAddress  *usecase.PredictAddress
	DeployContracts *usecase.DeployContracts
	VerifyContracts *usecase.VerifyContracts
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	confirmer usecase.Confirmer,
	records usecase.DeploymentRecordStore,
	predictAddress *usecase.PredictAddress,
	deployContracts *usecase.DeployContracts,
	verifyContracts *usecase.VerifyContracts,
) (*App, error) {
	return &App{
		Config:          cfg,
		Log:             log,
		Confirmer:       confirmer,
		Records:         records,
		PredictAddress:  predictAddress,
		DeployContracts: deployContracts,
		VerifyContracts: verifyContracts,
	}, nil
}
