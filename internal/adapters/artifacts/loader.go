package artifacts

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/azoth-protocol/azoth-deploy/internal/domain"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/config"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/models"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/afero"
)

const maxSuggestions = 3

// Loader reads Foundry build output: <out>/<Name>.sol/<Name>.json
type Loader struct {
	dir string
	fs  afero.Fs
	log *slog.Logger

	mu    sync.Mutex
	cache map[string]*models.ContractArtifact
}

// NewLoader creates a loader for the configured artifacts directory
func NewLoader(cfg *config.RuntimeConfig, fs afero.Fs, log *slog.Logger) *Loader {
	return &Loader{
		dir:   cfg.ArtifactsDir,
		fs:    fs,
		log:   log.With("component", "ArtifactLoader"),
		cache: make(map[string]*models.ContractArtifact),
	}
}

// Load returns the artifact of a contract. Each name is read once per loader, so every
// step of a run sees the same bytecode.
func (l *Loader) Load(ctx context.Context, name string) (*models.ContractArtifact, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if artifact, ok := l.cache[name]; ok {
		return artifact, nil
	}

	path := filepath.Join(l.dir, name+".sol", name+".json")
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.ArtifactNotFoundError{
				Name:        name,
				Path:        path,
				Suggestions: l.suggest(name),
			}
		}
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	artifact, err := parseArtifact(name, path, data)
	if err != nil {
		return nil, err
	}

	l.log.Debug("loaded artifact", "name", name, "path", path, "bytecode_size", len(artifact.Bytecode))
	l.cache[name] = artifact
	return artifact, nil
}

func parseArtifact(name, path string, data []byte) (*models.ContractArtifact, error) {
	var raw models.Artifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrArtifactMalformed, path, err)
	}
	if len(raw.ABI) == 0 {
		return nil, fmt.Errorf("%w: %s has no abi", domain.ErrArtifactMalformed, path)
	}

	contractABI, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: invalid abi: %v", domain.ErrArtifactMalformed, path, err)
	}

	object := strings.TrimPrefix(raw.Bytecode.Object, "0x")
	if object == "" {
		return nil, fmt.Errorf("%w: %s has no creation bytecode (abstract contract or interface?)", domain.ErrArtifactMalformed, path)
	}
	if strings.Contains(object, "__$") {
		return nil, fmt.Errorf("%w: %s has unlinked library references", domain.ErrArtifactMalformed, path)
	}
	bytecode, err := hex.DecodeString(object)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: invalid bytecode: %v", domain.ErrArtifactMalformed, path, err)
	}

	return &models.ContractArtifact{
		Name:            name,
		Path:            path,
		ABI:             contractABI,
		Bytecode:        bytecode,
		CompilerVersion: raw.Metadata.Compiler.Version,
	}, nil
}

// suggest returns the contract names in the build output closest to name
func (l *Loader) suggest(name string) []string {
	var candidates []string
	entries, err := afero.ReadDir(l.fs, l.dir)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sol") {
			continue
		}
		files, err := afero.ReadDir(l.fs, filepath.Join(l.dir, entry.Name()))
		if err != nil {
			continue
		}
		for _, f := range files {
			if strings.HasSuffix(f.Name(), ".json") {
				candidates = append(candidates, strings.TrimSuffix(f.Name(), ".json"))
			}
		}
	}

	matches := fuzzy.Find(name, candidates)

	var suggestions []string
	for _, m := range matches {
		if len(suggestions) == maxSuggestions {
			break
		}
		suggestions = append(suggestions, m.Str)
	}
	return suggestions
}
