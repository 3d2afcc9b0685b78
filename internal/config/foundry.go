package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/config"
	"github.com/joho/godotenv"
)

// loadFoundryConfig loads .env files and parses foundry.toml
func loadFoundryConfig(projectRoot string) (*config.FoundryConfig, error) {
	// .env files go first so foundry.toml values can reference them
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				slog.Warn("failed to load env file", "path", envFile, "error", err)
			}
		}
	}

	foundryPath := filepath.Join(projectRoot, "foundry.toml")
	cfg := &config.FoundryConfig{}
	if _, err := os.Stat(foundryPath); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(foundryPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse foundry.toml: %w", err)
	}

	for name, url := range cfg.RpcEndpoints {
		cfg.RpcEndpoints[name] = os.ExpandEnv(url)
	}
	for name, ec := range cfg.Etherscan {
		ec.Key = os.ExpandEnv(ec.Key)
		ec.URL = os.ExpandEnv(ec.URL)
		cfg.Etherscan[name] = ec
	}

	return cfg, nil
}
