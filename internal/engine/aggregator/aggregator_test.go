package aggregator_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/aggregator"
)

func TestAggregator_RecordAndQuery(t *testing.T) {
	agg := aggregator.New()

	agg.Record(domain.CompilationError{File: "a.ts", Stage: domain.StageTyped, Message: "type error"})
	agg.Record(domain.CompilationError{Stage: domain.StageCSS, Message: "generator missing", Severity: domain.SeverityWarning})
	agg.Record(domain.CompilationError{File: "b.vue", Stage: domain.StageTemplate, Message: "bad template"})
	agg.Record(domain.CompilationError{File: "a.ts", Stage: domain.StageMinify, Message: "minify crashed"})

	errs := agg.Errors()
	require.Len(t, errs, 4)
	assert.Equal(t, domain.SeverityError, errs[0].Severity)
	assert.False(t, errs[0].Timestamp.IsZero())
	assert.Equal(t, domain.SeverityWarning, errs[1].Severity)

	failures := agg.FileFailures()
	require.Len(t, failures, 2)
	assert.Len(t, failures["a.ts"], 2)
	assert.Len(t, failures["b.vue"], 1)
}

func TestAggregator_ResultsInTaxonomyOrder(t *testing.T) {
	agg := aggregator.New()

	agg.RecordStage(domain.StageMinify, "a.ts", true)
	agg.RecordStage(domain.StageFileRead, "a.ts", true)
	agg.RecordStage(domain.StageTyped, "a.ts", false)
	agg.RecordStage(domain.StageTyped, "a.ts", false)
	agg.RecordStage(domain.StageTyped, "b.ts", true)
	agg.RecordStage(domain.StageTemplate, "c.vue", true)

	results := agg.Results()
	require.Len(t, results, 4)

	stages := make([]domain.Stage, len(results))
	for i, r := range results {
		stages[i] = r.Stage
	}
	assert.Equal(t, []domain.Stage{domain.StageFileRead, domain.StageTemplate, domain.StageTyped, domain.StageMinify}, stages)

	typed := results[2]
	assert.Equal(t, 2, typed.ErrorCount)
	assert.Equal(t, 1, typed.SuccessCount)
	assert.Equal(t, []string{"a.ts"}, typed.Files)
}

func TestAggregator_Summary(t *testing.T) {
	agg := aggregator.New()
	agg.Record(domain.CompilationError{File: "c.ts", Stage: domain.StageStandardize, Message: "x"})
	agg.Record(domain.CompilationError{Stage: domain.StageLint, Message: "y", Severity: domain.SeverityWarning})

	summary := agg.Summary([]domain.FileResult{
		{Path: "a.ts", Outcome: domain.OutcomeCached},
		{Path: "b.ts", Outcome: domain.OutcomeSucceeded},
		{Path: "c.ts", Outcome: domain.OutcomeFailed},
		{Path: "d.ts", Outcome: domain.OutcomeTimeout},
	}, 2*time.Second)

	assert.Equal(t, domain.Summary{
		Total:     4,
		Succeeded: 1,
		Cached:    1,
		Failed:    2,
		Errors:    1,
		Warnings:  1,
		Duration:  2 * time.Second,
	}, summary)
	assert.False(t, summary.OK())
}

func TestAggregator_Reset(t *testing.T) {
	agg := aggregator.New()
	agg.Record(domain.CompilationError{File: "a.ts", Stage: domain.StageTyped, Message: "x"})
	agg.RecordStage(domain.StageTyped, "a.ts", false)

	agg.Reset()

	assert.Empty(t, agg.Errors())
	assert.Empty(t, agg.Results())
	assert.Empty(t, agg.FileFailures())
}

func TestAggregator_ConcurrentUse(t *testing.T) {
	agg := aggregator.New()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			agg.RecordStage(domain.StageStandardize, "f.ts", i%2 == 0)
			agg.Record(domain.CompilationError{File: "f.ts", Stage: domain.StageStandardize, Message: "m"})
		})
	}
	wg.Wait()

	results := agg.Results()
	require.Len(t, results, 1)
	assert.Equal(t, 25, results[0].SuccessCount)
	assert.Equal(t, 25, results[0].ErrorCount)
	assert.Len(t, agg.Errors(), 50)
}
