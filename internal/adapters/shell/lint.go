package shell

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/afero"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.LintRunner = (*LintRunner)(nil)

// diagnosticLine matches "file:line:col: [severity:] message".
var diagnosticLine = regexp.MustCompile(`^(.+?):(\d+):(\d+):\s*(?:(error|warning)\s*:?\s*)?(.+)$`)

// LintRunner runs the configured lint command under a pseudo-terminal.
type LintRunner struct {
	runner *Runner
	fs     afero.Fs
	argv   []string
	cfg    domain.LintConfig
	dir    string
}

// NewLintRunner creates a lint runner. The lint config path is handed to
// the command as KILN_LINT_CONFIG.
func NewLintRunner(runner *Runner, fs afero.Fs, argv []string, cfg domain.LintConfig, dir string) *LintRunner {
	return &LintRunner{runner: runner, fs: fs, argv: argv, cfg: cfg, dir: dir}
}

// Lint runs the linter and parses its findings. Linting that is disabled,
// unconfigured or missing its config file is a no-op.
func (l *LintRunner) Lint(ctx context.Context) ([]domain.LintDiagnostic, error) {
	if !l.cfg.Enabled || len(l.argv) == 0 || l.cfg.Config == "" {
		return nil, nil
	}
	if ok, _ := afero.Exists(l.fs, l.cfg.Config); !ok {
		return nil, nil
	}

	var out bytes.Buffer
	err := l.runner.Terminal(ctx, Command{
		Argv: l.argv,
		Dir:  l.dir,
		Env:  map[string]string{"KILN_LINT_CONFIG": l.cfg.Config},
	}, &out)

	diags := ParseDiagnostics(out.String())
	if err != nil && len(diags) == 0 {
		// Linters exit non-zero when they report findings. Without any the
		// failure is the tool's own.
		return nil, err
	}
	return diags, nil
}

// ParseDiagnostics extracts findings from linter output. Colour codes are
// stripped and lines that are not findings are ignored.
func ParseDiagnostics(output string) []domain.LintDiagnostic {
	var diags []domain.LintDiagnostic

	scanner := bufio.NewScanner(strings.NewReader(ansi.Strip(output)))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r ")
		m := diagnosticLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		lineNo, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		severity := domain.SeverityWarning
		if m[4] == "error" {
			severity = domain.SeverityError
		}

		diags = append(diags, domain.LintDiagnostic{
			File:     m[1],
			Line:     lineNo,
			Column:   col,
			Message:  strings.TrimSpace(m[5]),
			Severity: severity,
		})
	}
	return diags
}
