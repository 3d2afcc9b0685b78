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

// VerifyRenderer handles rendering of verification results
type VerifyRenderer struct {
	out    io.Writer
	format Format
	debug  bool
}

// NewVerifyRenderer creates a new verify renderer
func NewVerifyRenderer(out io.Writer, format Format, debug bool) *VerifyRenderer {
	return &VerifyRenderer{
		out:    out,
		format: format,
		debug:  debug,
	}
}

// verifyReport is the structured form of a verification phase
type verifyReport struct {
	ChainID   uint64                       `json:"chainId"`
	Results   []*models.VerificationResult `json:"results"`
	Succeeded int                          `json:"succeeded"`
	Failed    int                          `json:"failed"`
}

func newVerifyReport(result *usecase.VerifyAllResult) *verifyReport {
	return &verifyReport{
		ChainID:   result.Summary.ChainID,
		Results:   result.Results,
		Succeeded: result.SuccessCount,
		Failed:    result.FailedCount,
	}
}

// Render writes one row per contract and the error or command details below the table
func (r *VerifyRenderer) Render(result *usecase.VerifyAllResult) error {
	if r.format != FormatText {
		return writeStructured(r.out, r.format, newVerifyReport(result))
	}

	if len(result.Results) == 0 {
		color.New(color.FgYellow).Fprintln(r.out, "No contracts to verify.")
		return nil
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, sectionHeaderStyle.Sprint("VERIFICATION"))

	t := newTable()
	for _, res := range result.Results {
		t.AppendRow(table.Row{
			coloredName(res.Request.Name, res.Request.Kind),
			kindLabel(res.Request.Kind),
			addressStyle.Sprint(res.Request.Address.Hex()),
			statusCell(res.Status),
		})
	}
	fmt.Fprintln(r.out, t.Render())

	skipped := lo.Filter(result.Results, func(res *models.VerificationResult, _ int) bool {
		return res.Status == models.VerificationStatusSkipped
	})
	if len(skipped) > 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, sectionHeaderStyle.Sprint("COMMANDS"))
		for _, res := range skipped {
			fmt.Fprintf(r.out, "  %s\n", res.Output)
		}
	}

	for _, res := range result.Results {
		if res.Status != models.VerificationStatusFailed {
			continue
		}
		fmt.Fprintln(r.out)
		notVerifiedStyle.Fprintf(r.out, "✗ %s (%s) at %s\n", res.Request.Name, kindLabel(res.Request.Kind), res.Request.Address.Hex())
		fmt.Fprintf(r.out, "  %s\n", res.Error)
		if r.debug && res.Output != "" {
			fmt.Fprintln(r.out, txStyle.Sprint(res.Output))
		}
	}

	attempted := len(result.Results) - len(skipped)
	if attempted > 0 {
		fmt.Fprintf(r.out, "\nVerification complete: %d/%d successful\n", result.SuccessCount, attempted)
	}
	return nil
}

func statusCell(status models.VerificationStatus) string {
	switch status {
	case models.VerificationStatusVerified:
		return verifiedStyle.Sprint("✓ verified")
	case models.VerificationStatusFailed:
		return notVerifiedStyle.Sprint("✗ failed")
	default:
		return skippedStyle.Sprint("⏭ dry run")
	}
}
