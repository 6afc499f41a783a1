package typecheck_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/typecheck"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func quietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()
	return logger
}

func TestPool_Check_FiltersNoiseForTemplateFiles(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		analyzer := mocks.NewMockAnalyzer(ctrl)
		pool := typecheck.New(analyzer, quietLogger(ctrl))
		defer pool.Close()

		src := "<template><p>{{ a }}</p></template>\n<script setup lang=\"ts\">const a: number = 'x'</script>"
		companion := typecheck.CompanionName("src/App.vue")

		analyzer.EXPECT().Syntactic(gomock.Any(), gomock.Any(), companion).
			DoAndReturn(func(_ context.Context, host *domain.AnalysisHost, _ string) ([]domain.Diagnostic, error) {
				assert.Equal(t, "const a: number = 'x'", host.Files[companion])
				assert.Contains(t, host.Files, domain.AmbientDeclarationsFile)
				return []domain.Diagnostic{
					{Category: domain.CategoryError, Code: typecheck.CodeCannotFindModule, Message: "Cannot find module './x'"},
				}, nil
			})
		analyzer.EXPECT().Semantic(gomock.Any(), gomock.Any(), companion).Return([]domain.Diagnostic{
			{Category: domain.CategoryError, Code: 7006, Message: "Parameter '$event' implicitly has an 'any' type."},
			{Category: domain.CategoryError, Code: 2322, Message: "Type 'string' is not assignable to type 'number'.", File: companion, Line: 1},
		}, nil)

		resp, err := pool.Check(t.Context(), domain.WorkerRequest{FileName: "src/App.vue", Content: src})
		require.NoError(t, err)

		assert.NotEmpty(t, resp.ID)
		assert.True(t, resp.Success)
		assert.True(t, resp.HasErrors)
		require.Len(t, resp.Diagnostics, 1)
		assert.Equal(t, 2322, resp.Diagnostics[0].Code)
		assert.Equal(t, "src/App.vue", resp.Diagnostics[0].File)
	})
}

func TestPool_Check_OnePassFailingKeepsTheOther(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		analyzer := mocks.NewMockAnalyzer(ctrl)
		logger := mocks.NewMockLogger(ctrl)
		logger.EXPECT().Debug(gomock.Any()).AnyTimes()
		logger.EXPECT().Warn(gomock.Any()).Times(1)

		pool := typecheck.New(analyzer, logger)
		defer pool.Close()

		analyzer.EXPECT().Syntactic(gomock.Any(), gomock.Any(), "a.ts").Return(nil, errors.New("parser crashed"))
		analyzer.EXPECT().Semantic(gomock.Any(), gomock.Any(), "a.ts").Return([]domain.Diagnostic{
			{Category: domain.CategoryWarning, Code: 6133, Message: "'x' is declared but never used."},
		}, nil)

		resp, err := pool.Check(t.Context(), domain.WorkerRequest{FileName: "a.ts", Content: "let x = 1"})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.False(t, resp.HasErrors)
		require.Len(t, resp.Diagnostics, 1)
		assert.Equal(t, "a.ts", resp.Diagnostics[0].File)
	})
}

func TestPool_Check_PanicBecomesFailedResponse(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		analyzer := mocks.NewMockAnalyzer(ctrl)
		pool := typecheck.New(analyzer, quietLogger(ctrl), typecheck.WithWorkers(1))
		defer pool.Close()

		gomock.InOrder(
			analyzer.EXPECT().Syntactic(gomock.Any(), gomock.Any(), "bad.ts").
				DoAndReturn(func(context.Context, *domain.AnalysisHost, string) ([]domain.Diagnostic, error) {
					panic("boom")
				}),
			analyzer.EXPECT().Syntactic(gomock.Any(), gomock.Any(), "good.ts").Return(nil, nil),
		)
		analyzer.EXPECT().Semantic(gomock.Any(), gomock.Any(), "good.ts").Return(nil, nil)

		resp, err := pool.Check(t.Context(), domain.WorkerRequest{FileName: "bad.ts"})
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "panicked")

		resp, err = pool.Check(t.Context(), domain.WorkerRequest{FileName: "good.ts"})
		require.NoError(t, err)
		assert.True(t, resp.Success, "the worker survives a panic")
	})
}

func TestPool_Check_Timeout(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		analyzer := mocks.NewMockAnalyzer(ctrl)
		pool := typecheck.New(analyzer, quietLogger(ctrl), typecheck.WithTimeout(time.Second))

		release := make(chan struct{})
		analyzer.EXPECT().Syntactic(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, *domain.AnalysisHost, string) ([]domain.Diagnostic, error) {
				<-release
				return nil, nil
			})
		analyzer.EXPECT().Semantic(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		start := time.Now()
		resp, err := pool.Check(t.Context(), domain.WorkerRequest{FileName: "slow.ts"})
		require.ErrorIs(t, err, domain.ErrWorkerTimeout)
		assert.False(t, resp.Success)
		assert.Equal(t, time.Second, time.Since(start))

		close(release)
		require.NoError(t, pool.Close())
	})
}

func TestPool_Check_ContextCanceled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		analyzer := mocks.NewMockAnalyzer(ctrl)
		pool := typecheck.New(analyzer, quietLogger(ctrl))

		release := make(chan struct{})
		analyzer.EXPECT().Syntactic(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, *domain.AnalysisHost, string) ([]domain.Diagnostic, error) {
				<-release
				return nil, nil
			})
		analyzer.EXPECT().Semantic(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		ctx, cancel := context.WithCancel(t.Context())
		time.AfterFunc(100*time.Millisecond, cancel)

		_, err := pool.Check(ctx, domain.WorkerRequest{FileName: "a.ts"})
		require.ErrorIs(t, err, context.Canceled)

		close(release)
		require.NoError(t, pool.Close())
	})
}

func TestPool_Check_CorrelatesConcurrentReplies(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		analyzer := mocks.NewMockAnalyzer(ctrl)
		pool := typecheck.New(analyzer, quietLogger(ctrl), typecheck.WithWorkers(3))
		defer pool.Close()

		analyzer.EXPECT().Syntactic(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
		analyzer.EXPECT().Semantic(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *domain.AnalysisHost, file string) ([]domain.Diagnostic, error) {
				time.Sleep(time.Duration(len(file)) * time.Millisecond)
				return []domain.Diagnostic{{Category: domain.CategoryWarning, Message: file}}, nil
			}).AnyTimes()

		files := []string{"a.ts", "bb.ts", "ccc.ts", "dddd.ts", "eeeee.ts", "ffffff.ts", "g.ts", "hh.ts"}
		responses := make([]domain.WorkerResponse, len(files))
		var wg sync.WaitGroup
		for i, file := range files {
			wg.Go(func() {
				resp, err := pool.Check(context.Background(), domain.WorkerRequest{FileName: file})
				assert.NoError(t, err)
				responses[i] = resp
			})
		}
		wg.Wait()

		ids := map[string]bool{}
		for i, resp := range responses {
			require.Len(t, resp.Diagnostics, 1)
			assert.Equal(t, files[i], resp.Diagnostics[0].Message)
			ids[resp.ID] = true
		}
		assert.Len(t, ids, len(files), "every request gets its own id")
	})
}

func TestPool_IdleRecycleInIndividualMode(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		analyzer := mocks.NewMockAnalyzer(ctrl)
		analyzer.EXPECT().Syntactic(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
		analyzer.EXPECT().Semantic(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

		pool := typecheck.New(analyzer, quietLogger(ctrl), typecheck.WithIdleTimeout(5*time.Second))
		defer pool.Close()
		pool.SetMode(domain.ModeIndividual)

		_, err := pool.Check(t.Context(), domain.WorkerRequest{FileName: "a.ts"})
		require.NoError(t, err)
		assert.True(t, pool.Running())

		time.Sleep(4 * time.Second)
		synctest.Wait()
		assert.True(t, pool.Running())

		time.Sleep(2 * time.Second)
		synctest.Wait()
		assert.False(t, pool.Running())

		_, err = pool.Check(t.Context(), domain.WorkerRequest{FileName: "b.ts"})
		require.NoError(t, err)
		assert.True(t, pool.Running(), "the next request restarts the workers")
	})
}

func TestPool_WatchModeStaysWarm(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		analyzer := mocks.NewMockAnalyzer(ctrl)
		analyzer.EXPECT().Syntactic(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
		analyzer.EXPECT().Semantic(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

		pool := typecheck.New(analyzer, quietLogger(ctrl), typecheck.WithIdleTimeout(time.Second))
		defer pool.Close()
		pool.SetMode(domain.ModeWatch)

		_, err := pool.Check(t.Context(), domain.WorkerRequest{FileName: "a.ts"})
		require.NoError(t, err)

		time.Sleep(time.Minute)
		synctest.Wait()
		assert.True(t, pool.Running())

		pool.Recycle()
		assert.False(t, pool.Running())
	})
}

func TestPool_Closed(t *testing.T) {
	ctrl := gomock.NewController(t)
	pool := typecheck.New(mocks.NewMockAnalyzer(ctrl), quietLogger(ctrl))
	require.NoError(t, pool.Close())
	require.NoError(t, pool.Close())

	resp, err := pool.Check(t.Context(), domain.WorkerRequest{FileName: "a.ts"})
	require.ErrorIs(t, err, domain.ErrWorkerPoolClosed)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}
