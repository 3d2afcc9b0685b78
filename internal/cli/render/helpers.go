package render

import (
	"strings"

	"github.com/azoth-protocol/azoth-deploy/internal/domain/models"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Color styles for table format
var (
	addressStyle       = color.New(color.FgWhite)
	txStyle            = color.New(color.Faint)
	sectionHeaderStyle = color.New(color.Bold, color.FgHiWhite)
	implPrefixStyle    = color.New(color.Faint)
	labelStyle         = color.New(color.FgCyan)
	verifiedStyle      = color.New(color.FgGreen)
	notVerifiedStyle   = color.New(color.FgRed)
	skippedStyle       = color.New(color.FgYellow)
)

var titleCaser = cases.Title(language.English)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	// Capitalize first letter
	if len(message) > 0 {
		message = strings.ToUpper(message[:1]) + message[1:]
	}
	return color.New(color.FgRed).Sprintf("❌ %s", message)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// kindLabel renders a contract kind as "Logic" or "Proxy"
func kindLabel(kind models.ContractKind) string {
	return titleCaser.String(strings.ToLower(string(kind)))
}

// coloredName colors a contract name by kind
func coloredName(name string, kind models.ContractKind) string {
	if kind == models.ProxyContract {
		return color.New(color.FgMagenta, color.Bold).Sprint(name)
	}
	return color.New(color.FgGreen, color.Bold).Sprint(name)
}

// newTable creates a borderless table in the style of the deployment lists
func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateHeader = false
	t.Style().Options.SeparateColumns = false
	t.Style().Box = table.BoxStyle{
		PaddingRight: "   ",
	}
	return t
}
