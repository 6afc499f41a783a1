package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/kiln/internal/ui/style"
)

// View renders the UI.
func (m *Model) View() string {
	if m.ListHeight == 0 {
		return "Initializing..."
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, m.fileList(), m.logPane()),
		m.statusBar(),
	)
}

func (m *Model) fileList() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("FILES") + "\n\n")

	end := min(m.ListOffset+m.ListHeight, len(m.Files))
	start := min(m.ListOffset, end)
	for i := start; i < end; i++ {
		s.WriteString(m.renderFileRow(i, m.Files[i]) + "\n")
	}

	return listStyle.Render(s.String())
}

func (m *Model) renderFileRow(index int, f *FileNode) string {
	rowStyle := statusStyle(f.Status)

	cursor := "  "
	if index == m.SelectedIdx {
		cursor = selectedStyle.Render("> ")
		if f.Status != StatusDone && f.Status != StatusError {
			rowStyle = selectedStyle
		}
	}

	row := rowStyle.Render(fmt.Sprintf("%s %s", statusIcon(f.Status), f.Name))
	switch {
	case f.Status == StatusRunning && f.Stage != "":
		row += " " + stageStyle.Render(f.Stage)
	case f.Status == StatusDone || f.Status == StatusError:
		row += " " + stageStyle.Render(f.Duration.Round(time.Millisecond).String())
	}
	return cursor + row
}

func (m *Model) logPane() string {
	var header, content string

	if node, ok := m.FileMap[m.ActiveFile]; ok {
		mode := " (Following)"
		if !m.FollowMode {
			mode = " (Manual)"
		}
		titled := titleStyle
		if node.Status == StatusError {
			titled = failureTitleStyle
		}
		header = titled.Render("LOGS: " + node.Name + mode)
		content = node.Term.View()
	} else {
		header = titleStyle.Render("LOGS (Waiting...)")
	}

	return logStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, content))
}

// statusBar shows the totals of the last build, or live counts while one runs.
func (m *Model) statusBar() string {
	if m.Summary == nil {
		running, done, failed := 0, 0, 0
		for _, f := range m.Files {
			switch f.Status {
			case StatusRunning:
				running++
			case StatusDone:
				done++
			case StatusError:
				failed++
			}
		}
		return stageStyle.Render(fmt.Sprintf("%s %d running, %d done, %d failed  (q to quit)",
			style.Dot, running, done, failed))
	}

	s := m.Summary
	glyph := fileDoneStyle.Render(style.Check)
	if !s.OK() {
		glyph = fileErrorStyle.Render(style.Cross)
	}
	line := fmt.Sprintf("%s %d file(s): %d built, %d cached, %d failed, %d warning(s) in %v",
		glyph, s.Total, s.Succeeded, s.Cached, s.Failed, s.Warnings, s.Duration.Round(time.Millisecond))
	for _, e := range m.Loose {
		line += fmt.Sprintf("\n%s %s %s", glyphFor(e.Severity), e.Stage, e.Message)
	}
	return line
}

func statusIcon(s FileStatus) string {
	switch s {
	case StatusRunning:
		return style.Dot
	case StatusDone:
		return style.Check
	case StatusError:
		return style.Cross
	default:
		return "○"
	}
}

func statusStyle(s FileStatus) lipgloss.Style {
	switch s {
	case StatusRunning:
		return fileRunningStyle
	case StatusDone:
		return fileDoneStyle
	case StatusError:
		return fileErrorStyle
	default:
		return filePendingStyle
	}
}
