package render

import (
	"fmt"
	"io"

	"github.com/azoth-protocol/azoth-deploy/internal/domain/models"
	"github.com/jedib0t/go-pretty/v6/table"
)

// PredictionRenderer renders a predicted CREATE address
type PredictionRenderer struct {
	out    io.Writer
	format Format
}

// NewPredictionRenderer creates a new prediction renderer
func NewPredictionRenderer(out io.Writer, format Format) *PredictionRenderer {
	return &PredictionRenderer{out: out, format: format}
}

func (r *PredictionRenderer) Render(p *models.Prediction) error {
	if r.format != FormatText {
		return writeStructured(r.out, r.format, p)
	}

	t := newTable()
	t.AppendRows([]table.Row{
		{labelStyle.Sprint("Sender"), p.Sender.Hex()},
		{labelStyle.Sprint("Transaction count"), p.Baseline},
		{labelStyle.Sprint("Nonce"), fmt.Sprintf("%d (+%d)", p.Nonce, p.Offset)},
		{labelStyle.Sprint("Address"), addressStyle.Sprint(p.Address.Hex())},
	})
	fmt.Fprintln(r.out, t.Render())
	return nil
}
