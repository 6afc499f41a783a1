// Package linear provides a synchronous, line-buffered progress renderer.
// It is used for every output format; colour is dropped for CI and JSON logs.
package linear

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/kiln/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// batchSpan is the name of the span wrapping a batch build.
const batchSpan = "batch"

// Renderer implements ports.Renderer. Status lines go to stderr and file
// output to stdout, each prefixed with the file it belongs to.
type Renderer struct {
	stdout  io.Writer
	stderr  io.Writer
	output  *termenv.Output
	verbose bool

	mu      sync.Mutex
	spans   map[string]*spanState
	buffers map[string]*bytes.Buffer
}

type spanState struct {
	name      string
	parentID  string
	startTime time.Time
	stage     bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithVerbose prints file starts and full diagnostic details.
func WithVerbose(verbose bool) Option {
	return func(r *Renderer) {
		r.verbose = verbose
	}
}

// WithProfile overrides the colour profile.
func WithProfile(profile termenv.Profile) Option {
	return func(r *Renderer) {
		r.output = termenv.NewOutput(r.stderr, termenv.WithProfile(profile))
	}
}

// NewRenderer creates a Renderer. Nil writers default to os.Stdout and os.Stderr.
func NewRenderer(stdout, stderr io.Writer, opts ...Option) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	r := &Renderer{
		stdout:  stdout,
		stderr:  stderr,
		output:  output.NewWithProfile(stderr, output.ColorProfileANSI),
		spans:   make(map[string]*spanState),
		buffers: make(map[string]*bytes.Buffer),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnPlanEmit prints how many files are about to be built.
func (r *Renderer) OnPlanEmit(files []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr, "%s Building %d file(s)\n", r.colored(style.Arrow, style.Ember), len(files))
}

// OnFileStart registers a span. Stage spans are folded into their file.
func (r *Renderer) OnFileStart(spanID, parentID, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.spans[spanID] = &spanState{
		name:      name,
		parentID:  parentID,
		startTime: startTime,
		stage:     isStage(name),
	}
	r.buffers[spanID] = new(bytes.Buffer)

	if r.verbose && name != batchSpan && !isStage(name) {
		_, _ = fmt.Fprintf(r.stderr, "%s compiling\n", r.prefix(name))
	}
}

// OnFileLog buffers output and prints complete lines with the file prefix.
func (r *Renderer) OnFileLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.spans[spanID]; !ok {
		return
	}

	buf := r.buffers[spanID]
	buf.Write(data)

	for {
		line, err := buf.ReadBytes('\n')
		if err != nil {
			if len(line) > 0 {
				rest := new(bytes.Buffer)
				rest.Write(line)
				r.buffers[spanID] = rest
			}
			break
		}
		r.printLineLocked(r.fileNameLocked(spanID), line)
	}
}

// OnFileComplete flushes the span's output and, for file spans, prints the outcome.
func (r *Renderer) OnFileComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	span, ok := r.spans[spanID]
	if !ok {
		return
	}
	r.flushBufferLocked(spanID)

	if !span.stage && span.name != batchSpan {
		duration := endTime.Sub(span.startTime).Round(time.Millisecond)
		if err != nil {
			_, _ = fmt.Fprintf(r.stderr, "%s %s failed after %v: %v\n",
				r.prefix(span.name), r.colored(style.Cross, style.Red), duration, err)
		} else {
			_, _ = fmt.Fprintf(r.stderr, "%s %s built in %v\n",
				r.prefix(span.name), r.colored(style.Check, style.Green), duration)
		}
	}

	delete(r.spans, spanID)
	delete(r.buffers, spanID)
}

// OnSummary prints the per-stage table, the recorded problems and the totals.
func (r *Renderer) OnSummary(summary domain.Summary, results []domain.CompilationResult, errs []domain.CompilationError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.stderr
	if len(results) > 0 {
		width := 0
		for _, res := range results {
			width = max(width, len(res.Stage))
		}
		_, _ = fmt.Fprintln(w)
		for _, res := range results {
			name := string(res.Stage) + strings.Repeat(" ", width-len(res.Stage))
			_, _ = fmt.Fprintf(w, "  %s  %s %d  %s %d\n", style.Stage(name),
				r.colored(style.Check, style.Green), res.SuccessCount,
				r.colored(style.Cross, style.Red), res.ErrorCount)
		}
	}

	if len(errs) > 0 {
		_, _ = fmt.Fprintln(w)
		for _, e := range errs {
			r.printProblemLocked(e)
		}
	}

	_, _ = fmt.Fprintln(w)
	glyph := r.colored(style.Check, style.Green)
	if !summary.OK() {
		glyph = r.colored(style.Cross, style.Red)
	}
	_, _ = fmt.Fprintf(w, "%s %d file(s): %d built, %d cached, %d failed, %d warning(s) in %v\n",
		glyph, summary.Total, summary.Succeeded, summary.Cached, summary.Failed,
		summary.Warnings, summary.Duration.Round(time.Millisecond))
}

// Flush prints every partial line still buffered.
func (r *Renderer) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for spanID := range r.buffers {
		r.flushBufferLocked(spanID)
	}
	return nil
}

// printProblemLocked prints one recorded error or warning. Details are only
// shown in verbose mode. Must be called with r.mu held.
func (r *Renderer) printProblemLocked(e domain.CompilationError) {
	glyph := r.colored(style.Cross, style.Red)
	if e.Severity == domain.SeverityWarning {
		glyph = r.colored(style.Warning, style.Yellow)
	}

	if e.File == "" {
		_, _ = fmt.Fprintf(r.stderr, "%s %s %s\n", glyph, style.Stage(string(e.Stage)), e.Message)
	} else {
		_, _ = fmt.Fprintf(r.stderr, "%s %s %s %s\n", glyph, e.File, style.Stage(string(e.Stage)), e.Message)
	}

	if r.verbose && e.Details != "" {
		for line := range strings.Lines(e.Details) {
			_, _ = fmt.Fprintf(r.stderr, "    %s", line)
			if !strings.HasSuffix(line, "\n") {
				_, _ = fmt.Fprintln(r.stderr)
			}
		}
	}
	if e.Help != "" {
		_, _ = fmt.Fprintf(r.stderr, "    %s %s\n", r.colored(style.Arrow, style.Ash), e.Help)
	}
}

// fileNameLocked returns the file a span belongs to: its own name, or its
// parent's for stage spans. Must be called with r.mu held.
func (r *Renderer) fileNameLocked(spanID string) string {
	span := r.spans[spanID]
	if span.stage {
		if parent, ok := r.spans[span.parentID]; ok {
			return parent.name
		}
	}
	return span.name
}

// flushBufferLocked prints any partial line left for a span.
// Must be called with r.mu held.
func (r *Renderer) flushBufferLocked(spanID string) {
	if _, ok := r.spans[spanID]; !ok {
		return
	}

	buf := r.buffers[spanID]
	if buf.Len() > 0 {
		r.printLineLocked(r.fileNameLocked(spanID), buf.Bytes())
		buf.Reset()
	}
}

// printLineLocked prints a line with the file prefix.
// Must be called with r.mu held.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))

	if len(line) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", name, line)
}

func (r *Renderer) prefix(name string) string {
	return r.output.String(fmt.Sprintf("[%s]", name)).Faint().String()
}

func (r *Renderer) colored(s string, c lipgloss.Color) string {
	return r.output.String(s).Foreground(r.output.Color(string(c))).String()
}

func isStage(name string) bool {
	return domain.Stage(name).Rank() < len(domain.StageOrder)
}
