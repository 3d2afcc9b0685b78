package deployments

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/azoth-protocol/azoth-deploy/internal/domain"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/config"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/models"
	"github.com/azoth-protocol/azoth-deploy/internal/usecase"
)

const DeploymentsFile = "deployments.json"

// FileRepository stores deployment runs in <data dir>/deployments.json
type FileRepository struct {
	dataDir string
	mu      sync.RWMutex
	// runs holds every recorded run in the order it started
	runs []*models.DeploymentSummary
}

// NewFileRepository creates a repository for the configured data directory
func NewFileRepository(cfg *config.RuntimeConfig) (*FileRepository, error) {
	m := &FileRepository{dataDir: cfg.DataDir}

	if err := m.load(); err != nil {
		return nil, fmt.Errorf("failed to load deployment records: %w", err)
	}
	return m, nil
}

// load reads the records file, a missing file is an empty history
func (m *FileRepository) load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(m.dataDir, DeploymentsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, &m.runs)
}

// Save records a run, replacing the earlier snapshot of the same run
func (m *FileRepository) Save(ctx context.Context, summary *models.DeploymentSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.IndexFunc(m.runs, func(r *models.DeploymentSummary) bool {
		return r.ChainID == summary.ChainID && r.Sender == summary.Sender && r.StartedAt.Equal(summary.StartedAt)
	})
	if idx >= 0 {
		m.runs[idx] = summary
	} else {
		m.runs = append(m.runs, summary)
	}

	return m.save()
}

// Latest returns the most recent run on a chain, or on any chain for chainID 0
func (m *FileRepository) Latest(ctx context.Context, chainID uint64) (*models.DeploymentSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *models.DeploymentSummary
	for _, r := range m.runs {
		if chainID != 0 && r.ChainID != chainID {
			continue
		}
		if latest == nil || !r.StartedAt.Before(latest.StartedAt) {
			latest = r
		}
	}
	if latest == nil {
		if chainID == 0 {
			return nil, fmt.Errorf("%w: no deployment recorded", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: no deployment recorded on chain %d", domain.ErrNotFound, chainID)
	}
	return latest, nil
}

// List returns every recorded run, oldest first
func (m *FileRepository) List(ctx context.Context) []*models.DeploymentSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.runs)
}

// save writes the records file
func (m *FileRepository) save() error {
	if err := os.MkdirAll(m.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", m.dataDir, err)
	}

	path := filepath.Join(m.dataDir, DeploymentsFile)
	data, err := json.MarshalIndent(m.runs, "", "  ")
	if err != nil {
		return err
	}

	// Write to temp file first
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}

	// Atomic rename
	return os.Rename(tmpPath, path)
}

// Ensure it implements the interface
var _ usecase.DeploymentRecordStore = (*FileRepository)(nil)
