package interactive

import (
	"errors"
	"fmt"

	"github.com/azoth-protocol/azoth-deploy/internal/domain/config"
	"github.com/azoth-protocol/azoth-deploy/internal/usecase"
	"github.com/manifoldco/promptui"
)

// Confirmer asks yes/no questions on the terminal
type Confirmer struct {
	config *config.RuntimeConfig
	run    func(prompt promptui.Prompt) (string, error)
}

// NewConfirmer creates a new confirmer
func NewConfirmer(cfg *config.RuntimeConfig) *Confirmer {
	return &Confirmer{
		config: cfg,
		run: func(prompt promptui.Prompt) (string, error) {
			return prompt.Run()
		},
	}
}

// Confirm returns true without asking when --yes is set. In non-interactive mode nothing
// can be confirmed.
func (c *Confirmer) Confirm(label string) (bool, error) {
	if c.config.Yes {
		return true, nil
	}
	if c.config.NonInteractive {
		return false, fmt.Errorf("confirmation required, pass --yes in non-interactive mode")
	}

	_, err := c.run(promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	return false, fmt.Errorf("prompt failed: %w", err)
}

// Ensure Confirmer implements the interface
var _ usecase.Confirmer = (*Confirmer)(nil)
