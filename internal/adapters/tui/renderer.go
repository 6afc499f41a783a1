package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer runs the Model in a bubbletea program and implements ports.Renderer.
type Renderer struct {
	program *tea.Program
	model   *Model
	errCh   chan error
	done    chan struct{}
}

// NewRenderer creates a new TUI renderer.
func NewRenderer(model *Model, opts ...tea.ProgramOption) *Renderer {
	return &Renderer{
		program: tea.NewProgram(model, opts...),
		model:   model,
		errCh:   make(chan error, 1),
		done:    make(chan struct{}),
	}
}

// Start launches the program in a background goroutine.
func (r *Renderer) Start(_ context.Context) error {
	go func() {
		_, err := r.program.Run()
		r.errCh <- err
		close(r.done)
	}()
	return nil
}

// Stop asks the program to quit.
func (r *Renderer) Stop() error {
	r.program.Quit()
	return nil
}

// Wait blocks until the program has terminated.
func (r *Renderer) Wait() error {
	return <-r.errCh
}

// Done is closed once the program has terminated, including when the user
// quits it.
func (r *Renderer) Done() <-chan struct{} {
	return r.done
}

// OnPlanEmit forwards the planned files.
func (r *Renderer) OnPlanEmit(files []string) {
	r.program.Send(MsgPlan{Files: files})
}

// OnFileStart forwards span starts.
func (r *Renderer) OnFileStart(spanID, parentID, name string, startTime time.Time) {
	r.program.Send(MsgFileStart{
		SpanID:    spanID,
		ParentID:  parentID,
		Name:      name,
		StartTime: startTime,
	})
}

// OnFileLog forwards span output. The data is copied since the caller may
// reuse its buffer.
func (r *Renderer) OnFileLog(spanID string, data []byte) {
	r.program.Send(MsgFileLog{
		SpanID: spanID,
		Data:   append([]byte(nil), data...),
	})
}

// OnFileComplete forwards span ends.
func (r *Renderer) OnFileComplete(spanID string, endTime time.Time, err error) {
	r.program.Send(MsgFileComplete{
		SpanID:  spanID,
		EndTime: endTime,
		Err:     err,
	})
}

// OnSummary forwards the totals. The table of stage results is left to the
// console summary printed once the program exits.
func (r *Renderer) OnSummary(summary domain.Summary, _ []domain.CompilationResult, errs []domain.CompilationError) {
	r.program.Send(MsgSummary{Summary: summary, Errors: errs})
}

// Flush is a no-op: the program redraws on every message.
func (r *Renderer) Flush() error {
	return nil
}
