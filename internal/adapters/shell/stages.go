package shell

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var (
	_ ports.TemplateCompiler = (*TemplateStage)(nil)
	_ ports.TypedCompiler    = (*TypedStage)(nil)
	_ ports.Standardizer     = (*StandardizeStage)(nil)
	_ ports.Minifier         = (*MinifyStage)(nil)
	_ ports.Standardizer     = Identity{}
)

// Variables passed to stage commands.
const (
	EnvStageProduction = "KILN_STAGE_PRODUCTION"
	EnvStageScriptInfo = "KILN_STAGE_SCRIPT_INFO"
)

// reply is the JSON document a stage command prints on stdout.
// Transforms report their text in data or code.
type reply struct {
	Data       string             `json:"data"`
	Code       string             `json:"code"`
	Lang       string             `json:"lang"`
	ScriptInfo *domain.ScriptInfo `json:"scriptInfo"`
	Error      string             `json:"error"`
	Details    string             `json:"details"`
	Help       string             `json:"help"`
}

func (r *reply) text() string {
	if r.Data != "" {
		return r.Data
	}
	return r.Code
}

// commandStage runs a configured command once per file. The file path is
// appended to the argument list and the source text is written on stdin.
type commandStage struct {
	runner *Runner
	argv   []string
	dir    string
	stage  domain.Stage
}

func (s *commandStage) invoke(ctx context.Context, src, path string, env map[string]string) domain.StageResult {
	argv := append(append([]string{}, s.argv...), path)
	out, err := s.runner.Output(ctx, Command{Argv: argv, Dir: s.dir, Env: env, Stdin: []byte(src)})
	if err != nil {
		return domain.StageResult{Err: &domain.StageError{
			Stage:   s.stage,
			Message: "stage command failed",
			Details: detailsOf(err),
		}}
	}

	var r reply
	if err := json.Unmarshal(out, &r); err != nil {
		return domain.StageResult{Err: &domain.StageError{
			Stage:   s.stage,
			Message: domain.ErrCommandOutputInvalid.Error(),
			Details: err.Error(),
		}}
	}

	if r.Error != "" {
		return domain.StageResult{Err: &domain.StageError{
			Stage:   s.stage,
			Message: r.Error,
			Details: r.Details,
			Help:    r.Help,
		}}
	}

	return domain.StageResult{Output: domain.StageOutput{
		Text:       r.text(),
		Lang:       r.Lang,
		ScriptInfo: r.ScriptInfo,
	}}
}

// detailsOf flattens the zerr metadata of err into "key: value" lines.
func detailsOf(err error) string {
	var b strings.Builder
	b.WriteString(err.Error())
	if ze, ok := err.(interface{ Metadata() map[string]any }); ok {
		for _, key := range []string{"command", "exit_code", "stderr"} {
			if v, ok := ze.Metadata()[key]; ok {
				b.WriteString("\n" + key + ": ")
				switch val := v.(type) {
				case string:
					b.WriteString(val)
				case int:
					b.WriteString(strconv.Itoa(val))
				}
			}
		}
	}
	return b.String()
}

// TemplateStage runs the template-language precompiler command.
type TemplateStage struct{ commandStage }

// NewTemplateStage creates a template precompiler running argv in dir.
func NewTemplateStage(runner *Runner, argv []string, dir string) *TemplateStage {
	return &TemplateStage{commandStage{runner: runner, argv: argv, dir: dir, stage: domain.StageTemplate}}
}

// Compile precompiles src.
func (s *TemplateStage) Compile(ctx context.Context, src, path string, production bool) domain.StageResult {
	return s.invoke(ctx, src, path, map[string]string{EnvStageProduction: strconv.FormatBool(production)})
}

// TypedStage runs the typed-language precompiler command.
type TypedStage struct{ commandStage }

// NewTypedStage creates a typed-language precompiler running argv in dir.
func NewTypedStage(runner *Runner, argv []string, dir string) *TypedStage {
	return &TypedStage{commandStage{runner: runner, argv: argv, dir: dir, stage: domain.StageTyped}}
}

// Compile transpiles src. info is forwarded as JSON when the template stage produced it.
func (s *TypedStage) Compile(ctx context.Context, src, path string, info *domain.ScriptInfo) domain.StageResult {
	env := map[string]string{}
	if info != nil {
		data, err := json.Marshal(info)
		if err != nil {
			return domain.StageFail(domain.StageTyped, "cannot encode script info", err.Error())
		}
		env[EnvStageScriptInfo] = string(data)
	}
	return s.invoke(ctx, src, path, env)
}

// StandardizeStage runs the code standardizer command.
type StandardizeStage struct{ commandStage }

// NewStandardizeStage creates a standardizer running argv in dir.
func NewStandardizeStage(runner *Runner, argv []string, dir string) *StandardizeStage {
	return &StandardizeStage{commandStage{runner: runner, argv: argv, dir: dir, stage: domain.StageStandardize}}
}

// Standardize rewrites src.
func (s *StandardizeStage) Standardize(ctx context.Context, src, path string) domain.StageResult {
	return s.invoke(ctx, src, path, nil)
}

// MinifyStage runs the minifier command.
type MinifyStage struct{ commandStage }

// NewMinifyStage creates a minifier running argv in dir.
func NewMinifyStage(runner *Runner, argv []string, dir string) *MinifyStage {
	return &MinifyStage{commandStage{runner: runner, argv: argv, dir: dir, stage: domain.StageMinify}}
}

// Minify compresses src.
func (s *MinifyStage) Minify(ctx context.Context, src, path string, production bool) domain.StageResult {
	return s.invoke(ctx, src, path, map[string]string{EnvStageProduction: strconv.FormatBool(production)})
}

// Identity is the standardizer used when none is configured.
type Identity struct{}

// Standardize returns src unchanged.
func (Identity) Standardize(_ context.Context, src, _ string) domain.StageResult {
	return domain.StageOK(src)
}
