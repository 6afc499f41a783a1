package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

//go:generate mockgen -source=stages.go -destination=mocks/mock_stages.go -package=mocks

// TemplateCompiler precompiles template-language sources.
type TemplateCompiler interface {
	// Compile may report a script language and script info for the typed stage.
	Compile(ctx context.Context, src, path string, production bool) domain.StageResult
}

// TypedCompiler precompiles typed-language sources.
type TypedCompiler interface {
	Compile(ctx context.Context, src, path string, info *domain.ScriptInfo) domain.StageResult
}

// Standardizer rewrites code into the target dialect.
type Standardizer interface {
	Standardize(ctx context.Context, src, path string) domain.StageResult
}

// Minifier compresses production output.
type Minifier interface {
	Minify(ctx context.Context, src, path string, production bool) domain.StageResult
}

// CSSGenerator runs the CSS-framework generator once per batch.
type CSSGenerator interface {
	Generate(ctx context.Context) domain.CSSResult
}

// LintRunner runs the configured linters. A missing config is a no-op.
type LintRunner interface {
	Lint(ctx context.Context) ([]domain.LintDiagnostic, error)
}
