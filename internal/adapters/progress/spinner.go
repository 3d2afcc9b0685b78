package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/azoth-protocol/azoth-deploy/internal/usecase"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// SpinnerSink shows the running step behind a spinner and prints a line for each step
// once the next one starts
type SpinnerSink struct {
	mu      sync.Mutex
	out     io.Writer
	spinner *spinner.Spinner
	current *stageInfo
}

type stageInfo struct {
	Label     string
	StartTime time.Time
}

// NewSpinnerSink creates a spinner-based progress sink writing to stderr
func NewSpinnerSink() *SpinnerSink {
	return newSpinnerSink(os.Stderr)
}

func newSpinnerSink(out io.Writer) *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false

	return &SpinnerSink{
		out:     out,
		spinner: s,
	}
}

// OnProgress completes the previous step and starts tracking the new one
func (r *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.completeCurrent()

	label := event.Message
	if event.Total > 0 {
		label = fmt.Sprintf("[%d/%d] %s", event.Current, event.Total, event.Message)
	}
	r.current = &stageInfo{Label: label, StartTime: time.Now()}

	if event.Spinner {
		r.spinner.Suffix = " " + label
		if !r.spinner.Active() {
			r.spinner.Start()
		}
	}
}

// Info completes the running step and prints an info message
func (r *SpinnerSink) Info(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.completeCurrent()
	color.New(color.FgCyan).Fprintln(r.out, message)
}

// Error prints an error message, dropping the running step
func (r *SpinnerSink) Error(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.spinner.Active() {
		r.spinner.Stop()
	}
	if r.current != nil {
		color.New(color.FgRed).Fprintf(r.out, "✗ %s\n", r.current.Label)
		r.current = nil
	}
	color.New(color.FgRed).Fprintln(r.out, message)
}

// completeCurrent prints the running step as done; callers hold mu
func (r *SpinnerSink) completeCurrent() {
	if r.spinner.Active() {
		r.spinner.Stop()
	}
	if r.current == nil {
		return
	}
	duration := time.Since(r.current.StartTime).Round(time.Millisecond)
	fmt.Fprintf(r.out, "%s %s %s\n",
		color.New(color.FgGreen).Sprint("✓"),
		r.current.Label,
		color.New(color.Faint).Sprintf("(%s)", duration))
	r.current = nil
}

// Ensure SpinnerSink implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerSink)(nil)
