package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/azoth-protocol/azoth-deploy/internal/domain"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// legacyEnv maps config keys to the unprefixed variables deploy scripts already export
var legacyEnv = map[string]string{
	"rpc_url":           "RPC_URL",
	"private_key":       "PRIVATE_KEY",
	"owner":             "OWNER",
	"fee_recipient":     "FEE_RECIPIENT",
	"etherscan_api_key": "ETHERSCAN_API_KEY",
}

// Requirement selects which settings a command can't run without
type Requirement int

const (
	// RequireNone is enough for commands that never touch the chain
	RequireNone Requirement = iota
	// RequireRPC needs an RPC endpoint only
	RequireRPC
	// RequireChain needs an RPC endpoint and a signer
	RequireChain
	// RequireDeploy additionally needs the initializer parameters
	RequireDeploy
	// RequireVerify needs the explorer API key; forge resolves the chain from the recorded id
	RequireVerify
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	foundryConfig, err := loadFoundryConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load foundry config: %w", err)
	}

	profile := v.GetString("profile")
	cfg := &config.RuntimeConfig{
		ProjectRoot:      projectRoot,
		DataDir:          filepath.Join(projectRoot, ".azoth"),
		Profile:          profile,
		RPCURL:           v.GetString("rpc_url"),
		ChainID:          v.GetUint64("chain_id"),
		EtherscanAPIKey:  v.GetString("etherscan_api_key"),
		CompilerVersion:  v.GetString("compiler_version"),
		OptimizationRuns: v.GetInt("optimization_runs"),
		SkipVerify:       v.GetBool("skip_verify"),
		DryRun:           v.GetBool("dry_run"),
		Parallel:         v.GetInt("parallel"),
		Debug:            v.GetBool("debug"),
		NonInteractive:   v.GetBool("non_interactive"),
		Yes:              v.GetBool("yes"),
		Output:           v.GetString("output"),
		Timeout:          v.GetDuration("timeout"),
		FoundryConfig:    foundryConfig,
	}

	cfg.ArtifactsDir = v.GetString("artifacts_dir")
	if cfg.ArtifactsDir == "" {
		cfg.ArtifactsDir = foundryConfig.OutDir(profile)
	}
	if !filepath.IsAbs(cfg.ArtifactsDir) {
		cfg.ArtifactsDir = filepath.Join(projectRoot, cfg.ArtifactsDir)
	}

	// A network name picks the endpoint and explorer key out of foundry.toml
	if network := v.GetString("network"); network != "" {
		if cfg.RPCURL == "" {
			url, ok := foundryConfig.RpcEndpoints[network]
			if !ok {
				return nil, fmt.Errorf("network '%s' not found in foundry.toml [rpc_endpoints]", network)
			}
			cfg.RPCURL = url
		}
		if ec, ok := foundryConfig.Etherscan[network]; ok && cfg.EtherscanAPIKey == "" {
			cfg.EtherscanAPIKey = ec.Key
		}
	}

	if err := parseParameters(v, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseParameters decodes the key and addresses. Presence is checked by Require.
func parseParameters(v *viper.Viper, cfg *config.RuntimeConfig) error {
	var result *multierror.Error

	if raw := v.GetString("private_key"); raw != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(raw, "0x"))
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid private key: %w", err))
		} else {
			cfg.PrivateKey = key
			cfg.Sender = crypto.PubkeyToAddress(key.PublicKey)
		}
	}

	for key, dst := range map[string]*common.Address{
		"owner":         &cfg.Owner,
		"fee_recipient": &cfg.FeeRecipient,
	} {
		raw := v.GetString(key)
		if raw == "" {
			continue
		}
		if !common.IsHexAddress(raw) {
			result = multierror.Append(result, fmt.Errorf("invalid %s address: %q", legacyEnv[key], raw))
			continue
		}
		addr := common.HexToAddress(raw)
		if addr == (common.Address{}) {
			result = multierror.Append(result, fmt.Errorf("invalid %s address: zero address not allowed", legacyEnv[key]))
			continue
		}
		*dst = addr
	}

	return result.ErrorOrNil()
}

// Require reports every missing setting the given command needs in a single error
func Require(cfg *config.RuntimeConfig, req Requirement) error {
	var missing []string

	if req == RequireRPC || req == RequireChain || req == RequireDeploy {
		if cfg.RPCURL == "" {
			missing = append(missing, "RPC_URL")
		}
	}
	if req == RequireChain || req == RequireDeploy {
		if cfg.PrivateKey == nil {
			missing = append(missing, "PRIVATE_KEY")
		}
	}
	if req == RequireDeploy {
		if cfg.Owner == (common.Address{}) {
			missing = append(missing, "OWNER")
		}
		if cfg.FeeRecipient == (common.Address{}) {
			missing = append(missing, "FEE_RECIPIENT")
		}
		if !cfg.SkipVerify && cfg.EtherscanAPIKey == "" {
			missing = append(missing, "ETHERSCAN_API_KEY")
		}
	}
	if req == RequireVerify && !cfg.DryRun && cfg.EtherscanAPIKey == "" {
		missing = append(missing, "ETHERSCAN_API_KEY")
	}

	if len(missing) == 0 {
		return nil
	}

	var result *multierror.Error
	for _, name := range missing {
		result = multierror.Append(result, fmt.Errorf("%w: %s", domain.ErrConfigMissing, name))
	}
	result.ErrorFormat = func(errs []error) string {
		return fmt.Sprintf("%s: %s", domain.ErrConfigMissing, strings.Join(missing, ", "))
	}
	return result
}

// FindProjectRoot walks up from current directory to find foundry.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		foundryToml := filepath.Join(dir, "foundry.toml")
		if _, err := os.Stat(foundryToml); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Foundry project (foundry.toml not found)")
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, ".azoth"))

	v.SetEnvPrefix("AZOTH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// AZOTH_ prefixed variables win over the plain ones
	for key, env := range legacyEnv {
		_ = v.BindEnv(key, "AZOTH_"+strings.ToUpper(key), env)
	}

	v.SetDefault("profile", "default")
	v.SetDefault("timeout", "15m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("compiler_version", config.DefaultCompilerVersion)
	v.SetDefault("optimization_runs", config.DefaultOptimizationRuns)
	v.SetDefault("parallel", 1)
	v.SetDefault("output", "text")
	v.SetDefault("project_root", projectRoot)

	_ = v.ReadInConfig()

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	})

	return v
}
