package domain

import (
	"strings"
	"time"
)

// Stage identifies a pipeline step or a best-effort subsystem in error reports.
type Stage string

const (
	// StageFileRead covers reading the source file.
	StageFileRead Stage = "file-read"
	// StageTemplate is the template-language precompiler.
	StageTemplate Stage = "template-precompile"
	// StageTyped is the typed-language precompiler, including type analysis.
	StageTyped Stage = "typed-precompile"
	// StageStandardize is the code standardizer.
	StageStandardize Stage = "standardization"
	// StageMinify is the production minifier.
	StageMinify Stage = "minification"
	// StageFileWrite covers writing the artifact.
	StageFileWrite Stage = "file-write"
	// StageCSS is the CSS-framework generator.
	StageCSS Stage = "css-generation"
	// StageLint covers lint runners.
	StageLint Stage = "lint"
	// StageCacheIO covers cache persistence.
	StageCacheIO Stage = "cache-io"
	// StageWorker covers type-check worker failures.
	StageWorker Stage = "worker-internal"
	// StageTimeout marks single-file pipelines that exceeded their budget.
	StageTimeout Stage = "timeout"
)

// StageOrder is the reporting order of the stage taxonomy.
var StageOrder = []Stage{
	StageFileRead,
	StageTemplate,
	StageTyped,
	StageStandardize,
	StageMinify,
	StageFileWrite,
	StageCSS,
	StageLint,
	StageCacheIO,
	StageWorker,
	StageTimeout,
}

// Rank returns the position of s in StageOrder, or len(StageOrder) when unknown.
func (s Stage) Rank() int {
	for i, st := range StageOrder {
		if st == s {
			return i
		}
	}
	return len(StageOrder)
}

// BestEffort reports whether failures in s are recorded but never abort a run.
func (s Stage) BestEffort() bool {
	return s == StageCacheIO || s == StageCSS || s == StageLint
}

// Severity is the severity of a failure recorded against s.
func (s Stage) Severity() Severity {
	if s.BestEffort() {
		return SeverityWarning
	}
	return SeverityError
}

// Severity classifies a CompilationError.
type Severity string

const (
	// SeverityError marks a failure.
	SeverityError Severity = "error"
	// SeverityWarning marks a non-fatal problem.
	SeverityWarning Severity = "warning"
)

// CompilationError is one structured problem recorded during an invocation.
type CompilationError struct {
	File      string    `json:"file"`
	Stage     Stage     `json:"stage"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Details   string    `json:"details,omitempty"`
	Help      string    `json:"help,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CompilationResult is the per-stage tally accumulated across a batch.
type CompilationResult struct {
	Stage        Stage    `json:"stage"`
	ErrorCount   int      `json:"errorCount"`
	SuccessCount int      `json:"successCount"`
	Files        []string `json:"files"`
}

// ScriptInfo is the metadata the template stage hands to the typed stage.
type ScriptInfo struct {
	Lang   string `json:"lang,omitempty"`
	Setup  bool   `json:"setup,omitempty"`
	Source string `json:"source,omitempty"`
}

// StageOutput is the successful product of a stage.
type StageOutput struct {
	Text       string
	Lang       string
	ScriptInfo *ScriptInfo
}

// StageError is the failure product of a stage.
type StageError struct {
	Stage   Stage
	Message string
	Details string
	Help    string
}

// Error implements error.
func (e *StageError) Error() string {
	return string(e.Stage) + ": " + e.Message
}

// StageResult is either an output or an error, never both.
type StageResult struct {
	Output StageOutput
	Err    *StageError
}

// StageOK builds a successful result.
func StageOK(text string) StageResult {
	return StageResult{Output: StageOutput{Text: text}}
}

// StageFail builds a failed result.
func StageFail(stage Stage, msg, details string) StageResult {
	return StageResult{Err: &StageError{Stage: stage, Message: msg, Details: details}}
}

// Failed reports whether the stage failed, including empty output.
func (r StageResult) Failed() bool {
	return r.Err != nil || strings.TrimSpace(r.Output.Text) == ""
}

// Error returns the stage error, synthesizing one for empty output.
func (r StageResult) Error(stage Stage) *StageError {
	if r.Err != nil {
		if r.Err.Stage == "" {
			r.Err.Stage = stage
		}
		return r.Err
	}
	if strings.TrimSpace(r.Output.Text) == "" {
		return &StageError{Stage: stage, Message: ErrEmptyStageOutput.Error()}
	}
	return nil
}

// CSSResult is what the CSS-framework generator reports.
type CSSResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// LintDiagnostic is one finding from a lint runner.
type LintDiagnostic struct {
	File     string
	Line     int
	Column   int
	Message  string
	Severity Severity
}
