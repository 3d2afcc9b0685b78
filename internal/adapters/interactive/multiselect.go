package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/azoth-protocol/azoth-deploy/internal/domain/config"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/models"
	"github.com/azoth-protocol/azoth-deploy/internal/usecase"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
)

// contractItem is one logical contract of a run, shown at the address it resolves to
type contractItem struct {
	name     string
	contract *models.DeployedContract
}

// multiSelectModel is the bubbletea model for picking contracts
type multiSelectModel struct {
	items     []contractItem
	cursor    int
	selected  map[int]bool
	title     string
	done      bool
	cancelled bool
}

func initialMultiSelectModel(summary *models.DeploymentSummary, title string) multiSelectModel {
	names := summary.Logical()
	items := make([]contractItem, len(names))
	for i, name := range names {
		final, _ := summary.Final(name)
		items[i] = contractItem{name: name, contract: final}
	}
	return multiSelectModel{
		items:    items,
		selected: make(map[int]bool),
		title:    title,
	}
}

// Init is the initial command for bubbletea
func (m multiSelectModel) Init() tea.Cmd {
	return nil
}

// Update handles key presses
func (m multiSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case " ":
		m.selected[m.cursor] = !m.selected[m.cursor]
	case "a":
		all := len(m.chosen()) < len(m.items)
		for i := range m.items {
			m.selected[i] = all
		}
	case "enter":
		// Enter without a selection does nothing
		if len(m.chosen()) > 0 {
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the list
func (m multiSelectModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(color.New(color.FgCyan, color.Bold).Sprintf("%s\n\n", m.title))

	for i, item := range m.items {
		cursor := " "
		if m.cursor == i {
			cursor = color.New(color.FgCyan).Sprint("▸")
		}

		checkbox := color.New(color.FgWhite).Sprint("○")
		if m.selected[i] {
			checkbox = color.New(color.FgGreen).Sprint("✓")
		}

		name := color.New(color.Bold).Sprint(item.name)
		address := color.New(color.FgWhite).Sprint(item.contract.Address.Hex())
		kind := color.New(color.FgYellow).Sprintf("(%s)", strings.ToLower(string(item.contract.Kind)))

		b.WriteString(fmt.Sprintf("%s %s %s %s %s\n", cursor, checkbox, name, address, kind))
	}

	b.WriteString("\n")
	b.WriteString(color.New(color.FgYellow).Sprint("↑/↓: move  Space: toggle  a: all  Enter: confirm  q: quit\n"))

	return b.String()
}

// chosen returns the selected logical names in deployment order
func (m multiSelectModel) chosen() []string {
	var names []string
	for i, item := range m.items {
		if m.selected[i] {
			names = append(names, item.name)
		}
	}
	return names
}

// ContractPickerAdapter lets the user choose contracts with a multi-select list
type ContractPickerAdapter struct {
	config *config.RuntimeConfig
}

// NewContractPickerAdapter creates a new contract picker
func NewContractPickerAdapter(cfg *config.RuntimeConfig) *ContractPickerAdapter {
	return &ContractPickerAdapter{config: cfg}
}

// PickContracts shows the logical contracts of a run and returns the chosen names
func (p *ContractPickerAdapter) PickContracts(ctx context.Context, summary *models.DeploymentSummary, prompt string) ([]string, error) {
	if len(summary.Contracts) == 0 {
		return nil, fmt.Errorf("no contracts to select")
	}

	if p.config.NonInteractive {
		return nil, fmt.Errorf("interactive selection not available in non-interactive mode")
	}

	finalModel, err := tea.NewProgram(initialMultiSelectModel(summary, prompt), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, fmt.Errorf("multi-select failed: %w", err)
	}

	m := finalModel.(multiSelectModel)
	if m.cancelled || !m.done {
		return nil, fmt.Errorf("selection cancelled")
	}
	return m.chosen(), nil
}

// Ensure the adapter implements the interface
var _ usecase.ContractPicker = (*ContractPickerAdapter)(nil)
