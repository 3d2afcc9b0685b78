package render

import (
	"fmt"
	"io"

	"github.com/azoth-protocol/azoth-deploy/internal/domain/models"
	"github.com/azoth-protocol/azoth-deploy/internal/usecase"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
)

// SummaryRenderer renders the outcome of a deployment run
type SummaryRenderer struct {
	out    io.Writer
	format Format
}

// NewSummaryRenderer creates a new summary renderer
func NewSummaryRenderer(out io.Writer, format Format) *SummaryRenderer {
	return &SummaryRenderer{
		out:    out,
		format: format,
	}
}

// Render writes the header block followed by one row per logical contract. A proxied
// contract shows its proxy with the logic contract underneath.
func (r *SummaryRenderer) Render(summary *models.DeploymentSummary) error {
	if r.format != FormatText {
		return writeStructured(r.out, r.format, summary)
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, sectionHeaderStyle.Sprint("DEPLOYMENT SUMMARY"))

	header := newTable()
	header.AppendRows([]table.Row{
		{labelStyle.Sprint("Chain"), summary.ChainID},
		{labelStyle.Sprint("Sender"), summary.Sender.Hex()},
		{labelStyle.Sprint("Owner"), summary.Owner.Hex()},
		{labelStyle.Sprint("Fee recipient"), summary.FeeRecipient.Hex()},
	})
	for _, p := range summary.Predictions {
		header.AppendRow(table.Row{
			labelStyle.Sprintf("Predicted %s", p.Name),
			fmt.Sprintf("%s (nonce %d = %d + %d)", p.Address.Hex(), p.Nonce, p.Baseline, p.Offset),
		})
	}
	fmt.Fprintln(r.out, header.Render())
	fmt.Fprintln(r.out)

	if len(summary.Contracts) == 0 {
		fmt.Fprintln(r.out, "No contracts deployed")
		return nil
	}

	contracts := newTable()
	for _, name := range summary.Logical() {
		final, _ := summary.Final(name)
		contracts.AppendRow(table.Row{
			coloredName(name, final.Kind),
			kindLabel(final.Kind),
			addressStyle.Sprint(final.Address.Hex()),
			txStyle.Sprint(final.TxHash.Hex()),
		})
		if final.IsProxy() {
			contracts.AppendRow(table.Row{
				implPrefixStyle.Sprint("└─ implementation"),
				"",
				addressStyle.Sprint(final.Implementation.Hex()),
				"",
			})
		}
	}
	fmt.Fprintln(r.out, contracts.Render())
	fmt.Fprintln(r.out)

	proxies := lo.CountBy(summary.Contracts, func(c *models.DeployedContract) bool { return c.IsProxy() })
	if summary.Complete {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deployed %d contracts (%d behind proxies)", len(summary.Contracts), proxies)))
	} else {
		color.New(color.FgYellow).Fprintf(r.out, "Run aborted after %d contracts; they remain deployed and recorded\n", len(summary.Contracts))
	}
	return nil
}

// deployReport is the structured output of the deploy command
type deployReport struct {
	Deployment   *models.DeploymentSummary `json:"deployment"`
	Verification *verifyReport             `json:"verification,omitempty"`
	Error        string                    `json:"error,omitempty"`
}

// RenderDeployReport writes a deployment run and its verification as a single JSON or YAML
// document. result is nil when verification did not run.
func RenderDeployReport(out io.Writer, format Format, summary *models.DeploymentSummary, result *usecase.VerifyAllResult, runErr error) error {
	report := deployReport{Deployment: summary}
	if result != nil {
		report.Verification = newVerifyReport(result)
	}
	if runErr != nil {
		report.Error = runErr.Error()
	}
	return writeStructured(out, format, report)
}
