package typecheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/shell"
	"go.trai.ch/kiln/internal/adapters/typecheck"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestNewHost_TypedSourceHasOnlyTheFile(t *testing.T) {
	opts := map[string]any{"strict": true}
	host, target := typecheck.NewHost(domain.WorkerRequest{FileName: "src/a.ts", Content: "export const a = 1", CompilerOptions: opts})

	assert.Equal(t, "src/a.ts", target)
	assert.Equal(t, map[string]string{"src/a.ts": "export const a = 1"}, host.Files)
	assert.Equal(t, opts, host.Options)
}

func TestNewHost_TemplateFile(t *testing.T) {
	src := `<template><div/></template>
<script lang="ts">
export default { name: "A" }
</script>
<script setup lang='ts'>
const n: number = 1
</script>
<style>div {}</style>`

	host, target := typecheck.NewHost(domain.WorkerRequest{FileName: "src/A.vue", Content: src})

	assert.Equal(t, "src/A.vue.ts", target)
	assert.Equal(t, src, host.Files["src/A.vue"])
	assert.Equal(t, "export default { name: \"A\" }\nconst n: number = 1", host.Files[target])
	assert.Equal(t, typecheck.AmbientDeclarations, host.Files[domain.AmbientDeclarationsFile])
}

func TestNewHost_TemplateWithoutTypedScript(t *testing.T) {
	host, target := typecheck.NewHost(domain.WorkerRequest{FileName: "B.vue", Content: "<script>export default {}</script>"})
	assert.Equal(t, "export {};", host.Files[target])
}

func TestNoisePolicy(t *testing.T) {
	diags := []domain.Diagnostic{
		{Code: 2307, Message: "Cannot find module 'vue'"},
		{Code: 2792, Message: "Cannot find module 'x'. Did you mean to set moduleResolution?"},
		{Code: 7006, Message: "Parameter '_ctx' implicitly has an 'any' type."},
		{Code: 7031, Message: "Binding element '_' implicitly has an 'any' type."},
		{Code: 2322, Message: "Type 'string' is not assignable to type 'number'."},
		{Code: 7006, Message: "Parameter 'value' implicitly has an 'any' type."},
	}

	kept := typecheck.DefaultNoisePolicy().Filter(diags)
	require.Len(t, kept, 2)
	assert.Equal(t, 2322, kept[0].Code)
	assert.Equal(t, "Parameter 'value' implicitly has an 'any' type.", kept[1].Message)

	custom := typecheck.NewNoisePolicy([]int{2322}, nil)
	assert.Len(t, custom.Filter(diags), 5)

	assert.Equal(t, typecheck.DefaultNoisePolicy(), typecheck.NewNoisePolicy(nil, nil))
}

func TestCommandAnalyzer(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	// The checker echoes the pass name and the file it was asked about.
	argv := []string{"sh", "-c", `input=$(cat); case "$input" in *'"file":"a.ts"'*) ;; *) exit 9 ;; esac; ` +
		`printf '{"diagnostics":[{"category":"error","code":2322,"message":"%s"}]}' "$1"`, "sh"}
	analyzer := typecheck.NewCommandAnalyzer(shell.NewRunner(logger), argv, t.TempDir(), "")

	host := domain.NewAnalysisHost("a.ts", "let a: number = 'x'", nil)

	diags, err := analyzer.Syntactic(t.Context(), host, "a.ts")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, typecheck.PassSyntactic, diags[0].Message)
	assert.Equal(t, domain.CategoryError, diags[0].Category)

	diags, err = analyzer.Semantic(t.Context(), host, "a.ts")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, typecheck.PassSemantic, diags[0].Message)

	_, err = analyzer.Semantic(t.Context(), host, "other.ts")
	require.ErrorIs(t, err, domain.ErrAnalyzerFailed)

	broken := typecheck.NewCommandAnalyzer(shell.NewRunner(logger), []string{"sh", "-c", "echo nope", "sh"}, t.TempDir(), "")
	_, err = broken.Syntactic(t.Context(), host, "a.ts")
	require.ErrorIs(t, err, domain.ErrCommandOutputInvalid)
}

func TestNoopAnalyzer(t *testing.T) {
	diags, err := typecheck.NoopAnalyzer{}.Semantic(t.Context(), nil, "a.ts")
	require.NoError(t, err)
	assert.Empty(t, diags)
}
