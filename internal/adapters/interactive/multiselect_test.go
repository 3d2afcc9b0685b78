package interactive

import (
	"context"
	"testing"

	"github.com/azoth-protocol/azoth-deploy/internal/domain/config"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	factoryAddr = common.HexToAddress("0xcd234a471b72ba2f1ccf0a70fcaba648a5eecd8d")
	azothLogic  = common.HexToAddress("0x343c43a37d37dff08ae8c4a11544c718abb4fcf8")
	azothProxy  = common.HexToAddress("0xf778b86fa74e846c4f0a1fbd1335fe81c00a0c91")
)

func pickerRun() *models.DeploymentSummary {
	return &models.DeploymentSummary{
		ChainID: 31337,
		Contracts: []*models.DeployedContract{
			{Name: "Factory", Kind: models.LogicContract, Address: factoryAddr},
			{Name: "Azoth", Kind: models.LogicContract, Address: azothLogic},
			{Name: "Azoth", Kind: models.ProxyContract, Address: azothProxy, Implementation: azothLogic},
		},
	}
}

func press(t *testing.T, m multiSelectModel, keys ...tea.KeyMsg) (multiSelectModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(multiSelectModel)
	}
	return m, cmd
}

var (
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keySpace = tea.KeyMsg{Type: tea.KeySpace}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestMultiSelectModel_Items(t *testing.T) {
	m := initialMultiSelectModel(pickerRun(), "Select contracts to verify")

	require.Len(t, m.items, 2)
	assert.Equal(t, "Factory", m.items[0].name)
	assert.Equal(t, "Azoth", m.items[1].name)
	// A proxied contract is listed once, at its proxy
	assert.Equal(t, azothProxy, m.items[1].contract.Address)
	assert.Nil(t, m.Init())
}

func TestMultiSelectModel_Update(t *testing.T) {
	t.Run("cursor stays within the list", func(t *testing.T) {
		m := initialMultiSelectModel(pickerRun(), "title")

		m, _ = press(t, m, keyUp)
		assert.Equal(t, 0, m.cursor)

		m, _ = press(t, m, keyDown, keyDown, keyDown)
		assert.Equal(t, 1, m.cursor)

		m, _ = press(t, m, runeKey('k'))
		assert.Equal(t, 0, m.cursor)
		m, _ = press(t, m, runeKey('j'))
		assert.Equal(t, 1, m.cursor)
	})

	t.Run("space toggles the item under the cursor", func(t *testing.T) {
		m := initialMultiSelectModel(pickerRun(), "title")

		m, _ = press(t, m, keyDown, keySpace)
		assert.Equal(t, []string{"Azoth"}, m.chosen())

		m, _ = press(t, m, keySpace)
		assert.Empty(t, m.chosen())
	})

	t.Run("a selects all, then none", func(t *testing.T) {
		m := initialMultiSelectModel(pickerRun(), "title")

		m, _ = press(t, m, runeKey('a'))
		assert.Equal(t, []string{"Factory", "Azoth"}, m.chosen())

		m, _ = press(t, m, runeKey('a'))
		assert.Empty(t, m.chosen())
	})

	t.Run("enter without a selection keeps the list open", func(t *testing.T) {
		m := initialMultiSelectModel(pickerRun(), "title")

		m, cmd := press(t, m, keyEnter)
		assert.Nil(t, cmd)
		assert.False(t, m.done)
	})

	t.Run("enter confirms the selection in deployment order", func(t *testing.T) {
		m := initialMultiSelectModel(pickerRun(), "title")

		m, cmd := press(t, m, keyDown, keySpace, keyUp, keySpace, keyEnter)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.True(t, m.done)
		assert.False(t, m.cancelled)
		assert.Equal(t, []string{"Factory", "Azoth"}, m.chosen())
	})

	for _, key := range []tea.KeyMsg{runeKey('q'), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		t.Run("cancel with "+key.String(), func(t *testing.T) {
			m := initialMultiSelectModel(pickerRun(), "title")

			m, cmd := press(t, m, keySpace, key)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.True(t, m.cancelled)
			assert.False(t, m.done)
		})
	}

	t.Run("other messages are ignored", func(t *testing.T) {
		m := initialMultiSelectModel(pickerRun(), "title")

		next, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
		assert.Nil(t, cmd)
		assert.Equal(t, 0, next.(multiSelectModel).cursor)
	})
}

func TestMultiSelectModel_View(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	m := initialMultiSelectModel(pickerRun(), "Select contracts to verify")
	m, _ = press(t, m, keyDown, keySpace)

	view := m.View()
	assert.Contains(t, view, "Select contracts to verify")
	assert.Contains(t, view, "  ○ Factory "+factoryAddr.Hex()+" (logic)")
	assert.Contains(t, view, "▸ ✓ Azoth "+azothProxy.Hex()+" (proxy)")
	assert.NotContains(t, view, azothLogic.Hex())
	assert.Contains(t, view, "Space: toggle")

	m, _ = press(t, m, keyEnter)
	assert.Empty(t, m.View())
}

func TestPickContracts(t *testing.T) {
	ctx := context.Background()

	t.Run("no contracts", func(t *testing.T) {
		picker := NewContractPickerAdapter(&config.RuntimeConfig{})
		_, err := picker.PickContracts(ctx, &models.DeploymentSummary{}, "Select")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no contracts to select")
	})

	t.Run("non-interactive", func(t *testing.T) {
		picker := NewContractPickerAdapter(&config.RuntimeConfig{NonInteractive: true})
		_, err := picker.PickContracts(ctx, pickerRun(), "Select")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-interactive mode")
	})
}
