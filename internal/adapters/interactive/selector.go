package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/azoth-protocol/azoth-deploy/internal/domain/config"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/models"
	"github.com/azoth-protocol/azoth-deploy/internal/usecase"
	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
)

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	config *config.RuntimeConfig
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg}
}

// SelectRun selects a recorded deployment run, newest first
func (s *SelectorAdapter) SelectRun(ctx context.Context, runs []*models.DeploymentSummary, prompt string) (*models.DeploymentSummary, error) {
	if len(runs) == 0 {
		return nil, fmt.Errorf("no deployment runs recorded")
	}

	// If only one run, return it directly
	if len(runs) == 1 {
		return runs[0], nil
	}

	if s.config.NonInteractive {
		return nil, fmt.Errorf("interactive selection not available in non-interactive mode")
	}

	ordered := make([]*models.DeploymentSummary, len(runs))
	for i, r := range runs {
		ordered[len(runs)-1-i] = r
	}
	options := formatRunOptions(ordered)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:     prompt,
		Items:     options,
		Templates: templates,
		Size:      10,
		Searcher:  createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	return ordered[index], nil
}

// formatRunOptions creates display strings for run selection
func formatRunOptions(runs []*models.DeploymentSummary) []string {
	options := make([]string, len(runs))
	for i, run := range runs {
		started := color.New(color.FgWhite, color.Bold).Sprint(run.StartedAt.Local().Format("2006-01-02 15:04:05"))
		chain := color.New(color.FgBlue).Sprintf("chain %d", run.ChainID)
		names := strings.Join(run.Logical(), ", ")

		if !run.Complete {
			options[i] = fmt.Sprintf("%s %s %s (%s)", started, chain, color.New(color.FgYellow).Sprint("[incomplete]"), names)
		} else {
			options[i] = fmt.Sprintf("%s %s (%s)", started, chain, names)
		}
	}
	return options
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		// Empty search shows all items
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		pattern := fuzzy.Find(input, []string{item})
		return len(pattern) > 0
	}
}

// Ensure the adapter implements the interface
var _ usecase.RunSelector = (*SelectorAdapter)(nil)
