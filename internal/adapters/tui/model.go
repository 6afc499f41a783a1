// Package tui provides the interactive progress view: a list of files on the
// left and the output of the selected file on the right.
package tui

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/kiln/internal/ui/style"
)

const (
	fileListWidthRatio = 0.3
	logPaneBorderWidth = 4
	// batchSpan wraps a whole batch and has no row of its own.
	batchSpan = "batch"
)

// FileStatus is the display state of a file.
type FileStatus string

const (
	// StatusPending means the file is planned but has not started.
	StatusPending FileStatus = "Pending"
	// StatusRunning means the pipeline is running.
	StatusRunning FileStatus = "Running"
	// StatusDone means the last build succeeded or was served from cache.
	StatusDone FileStatus = "Done"
	// StatusError means the last build failed.
	StatusError FileStatus = "Error"
)

// FileNode is one row of the file list.
type FileNode struct {
	Name     string
	Status   FileStatus
	Stage    string
	Duration time.Duration
	Term     *Vterm

	spanID  string
	started time.Time
}

// Messages fed to the model by the Renderer.
type (
	// MsgPlan announces the files of a batch.
	MsgPlan struct {
		Files []string
	}
	// MsgFileStart reports a started span.
	MsgFileStart struct {
		SpanID    string
		ParentID  string
		Name      string
		StartTime time.Time
	}
	// MsgFileLog carries output of a span.
	MsgFileLog struct {
		SpanID string
		Data   []byte
	}
	// MsgFileComplete reports an ended span.
	MsgFileComplete struct {
		SpanID  string
		EndTime time.Time
		Err     error
	}
	// MsgSummary carries the totals of a finished build or watch cycle.
	MsgSummary struct {
		Summary domain.Summary
		Errors  []domain.CompilationError
	}
)

// Model is the bubbletea model of the progress view.
type Model struct {
	Files   []*FileNode
	FileMap map[string]*FileNode
	SpanMap map[string]*FileNode

	// SourceRoot turns the absolute paths of recorded errors into row names.
	SourceRoot string
	Summary    *domain.Summary
	// Loose holds problems that belong to no file row.
	Loose []domain.CompilationError

	ActiveFile  string
	SelectedIdx int
	ListOffset  int
	ListHeight  int
	LogWidth    int
	LogHeight   int
	FollowMode  bool

	Output *termenv.Output
}

// NewModel creates an empty model drawing to w.
func NewModel(w io.Writer, sourceRoot string) Model {
	if w == nil {
		w = os.Stderr
	}

	out := output.New(w)
	lipgloss.SetColorProfile(out.Profile)

	return Model{
		FileMap:    make(map[string]*FileNode),
		SpanMap:    make(map[string]*FileNode),
		SourceRoot: sourceRoot,
		FollowMode: true,
		Output:     out,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
//
//nolint:cyclop // one case per message type
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		listWidth := int(float64(msg.Width) * fileListWidthRatio)
		m.LogWidth = msg.Width - listWidth - logPaneBorderWidth

		header := lipgloss.Height(titleStyle.Render("FILES") + "\n\n")
		status := lipgloss.Height(m.statusBar())
		m.ListHeight = msg.Height - header - status
		m.LogHeight = msg.Height - lipgloss.Height(titleStyle.Render("LOGS")) - status
		m.ensureVisible()

		for _, node := range m.Files {
			node.Term.SetSize(m.LogWidth, m.LogHeight)
		}

	case MsgPlan:
		m.Summary = nil
		m.Loose = nil
		for _, name := range msg.Files {
			node := m.node(name)
			node.Status = StatusPending
			node.Stage = ""
		}

	case MsgFileStart:
		m.start(msg)

	case MsgFileLog:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			_, _ = node.Term.Write(crlf(msg.Data))
		}

	case MsgFileComplete:
		m.complete(msg)

	case MsgSummary:
		summary := msg.Summary
		m.Summary = &summary
		m.Loose = nil
		for _, e := range msg.Errors {
			if node, ok := m.FileMap[m.rowName(e.File)]; ok && e.File != "" {
				_, _ = fmt.Fprintf(node.Term, "%s %s: %s\r\n", glyphFor(e.Severity), e.Stage, e.Message)
				continue
			}
			m.Loose = append(m.Loose, e)
		}
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "k", "up":
		if m.SelectedIdx > 0 {
			m.SelectedIdx--
			m.FollowMode = false
			m.ensureVisible()
			m.updateActiveView()
		}
	case "j", "down":
		if m.SelectedIdx < len(m.Files)-1 {
			m.SelectedIdx++
			m.FollowMode = false
			m.ensureVisible()
			m.updateActiveView()
		}
	case "esc":
		m.FollowMode = true
		for i, f := range m.Files {
			if f.Status == StatusRunning {
				m.SelectedIdx = i
				break
			}
		}
		m.ensureVisible()
		m.updateActiveView()
	default:
		if node, ok := m.FileMap[m.ActiveFile]; ok {
			switch msg.String() {
			case "pgup":
				node.Term.ScrollPage(-1)
			case "pgdown":
				node.Term.ScrollPage(1)
			case "home":
				node.Term.ScrollToTop()
			case "end":
				node.Term.ScrollToBottom()
			}
		}
	}
	return nil
}

// start registers a span. Stage spans are children of a file span and only
// update that file's current stage.
func (m *Model) start(msg MsgFileStart) {
	if msg.Name == batchSpan {
		return
	}
	if parent, ok := m.SpanMap[msg.ParentID]; ok && msg.ParentID != "" {
		m.SpanMap[msg.SpanID] = parent
		parent.Stage = msg.Name
		return
	}

	node := m.node(msg.Name)
	if node.Status != StatusPending && node.Term.UsedHeight() > 0 {
		_, _ = fmt.Fprintf(node.Term, "── rebuild at %s ──\r\n", msg.StartTime.Format(time.TimeOnly))
	}
	node.Status = StatusRunning
	node.Stage = ""
	node.spanID = msg.SpanID
	node.started = msg.StartTime
	m.SpanMap[msg.SpanID] = node

	if m.FollowMode {
		m.focus(node.Name)
	}
}

func (m *Model) complete(msg MsgFileComplete) {
	node, ok := m.SpanMap[msg.SpanID]
	if !ok {
		return
	}
	delete(m.SpanMap, msg.SpanID)

	if node.spanID != msg.SpanID {
		node.Stage = ""
		return
	}

	node.Stage = ""
	node.Duration = msg.EndTime.Sub(node.started)
	if msg.Err != nil {
		node.Status = StatusError
		_, _ = fmt.Fprintf(node.Term, "%s %v\r\n", glyphFor(domain.SeverityError), msg.Err)
	} else {
		node.Status = StatusDone
	}
}

// node returns the row for name, appending one if needed.
func (m *Model) node(name string) *FileNode {
	if node, ok := m.FileMap[name]; ok {
		return node
	}
	node := &FileNode{Name: name, Status: StatusPending, Term: NewVterm()}
	if m.LogWidth > 0 && m.LogHeight > 0 {
		node.Term.SetSize(m.LogWidth, m.LogHeight)
	}
	if m.FileMap == nil {
		m.FileMap = make(map[string]*FileNode)
	}
	if m.SpanMap == nil {
		m.SpanMap = make(map[string]*FileNode)
	}
	m.FileMap[name] = node
	m.Files = append(m.Files, node)
	if m.ActiveFile == "" {
		m.ActiveFile = name
	}
	return node
}

// rowName maps a recorded error path to the name its row is listed under.
func (m *Model) rowName(path string) string {
	if m.SourceRoot == "" {
		return path
	}
	if rel, err := filepath.Rel(m.SourceRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func (m *Model) focus(name string) {
	for i, f := range m.Files {
		if f.Name == name {
			m.SelectedIdx = i
			break
		}
	}
	m.ensureVisible()
	m.updateActiveView()
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.SelectedIdx < m.ListOffset {
		m.ListOffset = m.SelectedIdx
	} else if m.SelectedIdx >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.SelectedIdx - m.ListHeight + 1
	}
}

func (m *Model) updateActiveView() {
	if m.SelectedIdx < 0 || m.SelectedIdx >= len(m.Files) {
		return
	}
	node := m.Files[m.SelectedIdx]
	m.ActiveFile = node.Name
	if m.FollowMode {
		node.Term.ScrollToBottom()
	}
}

// crlf turns bare line feeds into CRLF so each line starts at column zero.
func crlf(data []byte) []byte {
	return bytes.ReplaceAll(bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n")), []byte("\n"), []byte("\r\n"))
}

func glyphFor(s domain.Severity) string {
	if s == domain.SeverityWarning {
		return fileRunningStyle.Render(style.Warning)
	}
	return fileErrorStyle.Render(style.Cross)
}
