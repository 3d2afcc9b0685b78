package render

import (
	"fmt"
	"io"

	"github.com/azoth-protocol/azoth-deploy/internal/domain"
	"github.com/azoth-protocol/azoth-deploy/internal/domain/models"
	"github.com/jedib0t/go-pretty/v6/table"
)

// PlanRenderer renders a deployment plan without touching the chain
type PlanRenderer struct {
	out    io.Writer
	format Format
}

// NewPlanRenderer creates a new plan renderer
func NewPlanRenderer(out io.Writer, format Format) *PlanRenderer {
	return &PlanRenderer{out: out, format: format}
}

type planStep struct {
	Index  int    `json:"index"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Call   string `json:"call"`
	Offset uint64 `json:"offset,omitempty"`
}

// Render lists the steps. Prediction steps show the nonce offset of their target.
func (r *PlanRenderer) Render(plan *domain.DeploymentPlan) error {
	steps := make([]planStep, len(plan.Steps))
	for i, s := range plan.Steps {
		steps[i] = planStep{Index: i + 1, Kind: string(s.Kind), Name: s.Name, Call: s.String()}
		if s.Kind == domain.StepPredict {
			offset, err := plan.PredictionOffset(i)
			if err != nil {
				return err
			}
			steps[i].Offset = offset
		}
	}

	if r.format != FormatText {
		return writeStructured(r.out, r.format, steps)
	}

	t := newTable()
	tx := 0
	for _, s := range steps {
		switch s.Kind {
		case string(domain.StepPredict):
			t.AppendRow(table.Row{
				fmt.Sprintf("%d.", s.Index),
				labelStyle.Sprint("predict"),
				fmt.Sprintf("%s at nonce + %d", s.Name, s.Offset),
			})
		default:
			tx++
			kind := models.LogicContract
			if s.Kind == string(domain.StepDeployProxy) {
				kind = models.ProxyContract
			}
			t.AppendRow(table.Row{
				fmt.Sprintf("%d.", s.Index),
				kindLabel(kind),
				fmt.Sprintf("%s %s", s.Call, txStyle.Sprintf("(tx %d)", tx)),
			})
		}
	}
	fmt.Fprintln(r.out, t.Render())
	fmt.Fprintf(r.out, "\n%d transactions\n", plan.Transactions())
	return nil
}
