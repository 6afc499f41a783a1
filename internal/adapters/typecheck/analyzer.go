package typecheck

import (
	"context"
	"encoding/json"

	"go.trai.ch/kiln/internal/adapters/shell"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Analyzer = (*CommandAnalyzer)(nil)
	_ ports.Analyzer = NoopAnalyzer{}
)

// Analysis passes understood by a checker command.
const (
	PassSyntactic = "syntactic"
	PassSemantic  = "semantic"
)

// NoopAnalyzer reports no diagnostics. It is used when no checker is configured.
type NoopAnalyzer struct{}

// Syntactic returns nothing.
func (NoopAnalyzer) Syntactic(context.Context, *domain.AnalysisHost, string) ([]domain.Diagnostic, error) {
	return nil, nil
}

// Semantic returns nothing.
func (NoopAnalyzer) Semantic(context.Context, *domain.AnalysisHost, string) ([]domain.Diagnostic, error) {
	return nil, nil
}

// analysisRequest is written to the checker's stdin.
type analysisRequest struct {
	Pass            string            `json:"pass"`
	File            string            `json:"file"`
	Files           map[string]string `json:"files"`
	CompilerOptions map[string]any    `json:"compilerOptions,omitempty"`
	Project         string            `json:"project,omitempty"`
}

// analysisReply is what the checker prints on stdout.
type analysisReply struct {
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
}

// CommandAnalyzer runs an external checker once per pass. The pass name is
// appended to the argument list and the host is sent as JSON on stdin.
type CommandAnalyzer struct {
	runner  *shell.Runner
	argv    []string
	dir     string
	project string
}

// NewCommandAnalyzer creates an analyzer for argv. project is the tsconfig
// path handed to the checker, and may be empty.
func NewCommandAnalyzer(runner *shell.Runner, argv []string, dir, project string) *CommandAnalyzer {
	return &CommandAnalyzer{runner: runner, argv: argv, dir: dir, project: project}
}

// Syntactic runs the syntactic pass.
func (a *CommandAnalyzer) Syntactic(ctx context.Context, host *domain.AnalysisHost, file string) ([]domain.Diagnostic, error) {
	return a.run(ctx, PassSyntactic, host, file)
}

// Semantic runs the semantic pass.
func (a *CommandAnalyzer) Semantic(ctx context.Context, host *domain.AnalysisHost, file string) ([]domain.Diagnostic, error) {
	return a.run(ctx, PassSemantic, host, file)
}

func (a *CommandAnalyzer) run(ctx context.Context, pass string, host *domain.AnalysisHost, file string) ([]domain.Diagnostic, error) {
	stdin, err := json.Marshal(analysisRequest{
		Pass:            pass,
		File:            file,
		Files:           host.Files,
		CompilerOptions: host.Options,
		Project:         a.project,
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrAnalyzerFailed, err.Error()), "pass", pass)
	}

	argv := append(append([]string{}, a.argv...), pass)
	out, err := a.runner.Output(ctx, shell.Command{Argv: argv, Dir: a.dir, Stdin: stdin})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrAnalyzerFailed, err.Error()), "pass", pass)
	}

	var reply analysisReply
	if err := json.Unmarshal(out, &reply); err != nil {
		wrapped := zerr.With(zerr.Wrap(domain.ErrCommandOutputInvalid, err.Error()), "pass", pass)
		return nil, zerr.With(wrapped, "file", file)
	}
	return reply.Diagnostics, nil
}
