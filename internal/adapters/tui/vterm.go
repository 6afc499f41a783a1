package tui

import (
	"bytes"
	"sync"

	"github.com/vito/midterm"
)

// Vterm is a scrollable virtual terminal holding one file's output.
// Compiler output may carry colours and cursor movement, so it is replayed
// through a terminal emulator instead of being stored as plain lines.
type Vterm struct {
	mu      sync.Mutex
	vt      *midterm.Terminal
	viewBuf bytes.Buffer

	Offset int
	Height int
	Width  int
}

// NewVterm creates an empty Vterm.
func NewVterm() *Vterm {
	return &Vterm{vt: midterm.NewAutoResizingTerminal()}
}

// Write appends output. A view pinned to the bottom follows new lines.
func (v *Vterm) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	follow := v.Offset >= v.maxOffset()
	n, err := v.vt.Write(p)
	if follow {
		v.Offset = v.maxOffset()
	}
	return n, err
}

// SetSize resizes the view, keeping it pinned to the bottom if it was.
func (v *Vterm) SetSize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	follow := v.Offset >= v.maxOffset()
	v.Width = max(width, 1)
	v.Height = max(height, 1)
	v.vt.ResizeX(v.Width)

	if follow {
		v.Offset = v.maxOffset()
	}
	v.clamp()
}

// Scroll moves the view by delta lines.
func (v *Vterm) Scroll(delta int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.Offset += delta
	v.clamp()
}

// ScrollPage moves the view by pages screens.
func (v *Vterm) ScrollPage(pages int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.Offset += pages * max(v.Height, 1)
	v.clamp()
}

// ScrollToTop shows the first line.
func (v *Vterm) ScrollToTop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Offset = 0
}

// ScrollToBottom shows the last lines and resumes following.
func (v *Vterm) ScrollToBottom() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Offset = v.maxOffset()
}

// UsedHeight returns the number of lines written so far.
func (v *Vterm) UsedHeight() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vt.UsedHeight()
}

// View renders the visible lines.
func (v *Vterm) View() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.clamp()
	v.viewBuf.Reset()
	for i := range v.Height {
		row := v.Offset + i
		if row >= v.vt.UsedHeight() {
			break
		}
		if i > 0 {
			_ = v.viewBuf.WriteByte('\n')
		}
		_ = v.vt.RenderLine(&v.viewBuf, row)
	}
	return v.viewBuf.String()
}

func (v *Vterm) clamp() {
	v.Offset = min(max(v.Offset, 0), v.maxOffset())
}

func (v *Vterm) maxOffset() int {
	return max(v.vt.UsedHeight()-v.Height, 0)
}
