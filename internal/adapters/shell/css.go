package shell

import (
	"context"
	"encoding/json"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.CSSGenerator = (*CSSGenerator)(nil)

// CSSGenerator runs the CSS-framework generator command once per batch.
type CSSGenerator struct {
	runner *Runner
	argv   []string
	dir    string
}

// NewCSSGenerator creates a generator running argv in dir.
func NewCSSGenerator(runner *Runner, argv []string, dir string) *CSSGenerator {
	return &CSSGenerator{runner: runner, argv: argv, dir: dir}
}

// Generate runs the generator. The command may print a JSON result, a bare
// boolean, or anything else, which counts as success when it exits zero.
func (g *CSSGenerator) Generate(ctx context.Context) domain.CSSResult {
	out, err := g.runner.Output(ctx, Command{Argv: g.argv, Dir: g.dir})
	if err != nil {
		return domain.CSSResult{Success: false, Message: "css generation failed", Details: detailsOf(err)}
	}

	trimmed := strings.TrimSpace(string(out))
	switch trimmed {
	case "true":
		return domain.CSSResult{Success: true, Message: "css generated"}
	case "false":
		return domain.CSSResult{Success: false, Message: "css generation failed"}
	}

	var result domain.CSSResult
	if err := json.Unmarshal(out, &result); err == nil {
		if result.Message == "" {
			result.Message = "css generated"
			if !result.Success {
				result.Message = "css generation failed"
			}
		}
		return result
	}

	msg := "css generated"
	if trimmed != "" {
		msg = lastLine(trimmed)
	}
	return domain.CSSResult{Success: true, Message: msg}
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
