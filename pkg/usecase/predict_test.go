package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/seido-lab/asclepius/pkg/domain/interfaces"
	"github.com/seido-lab/asclepius/pkg/domain/types"
	"github.com/seido-lab/asclepius/pkg/repository/memory"
	"github.com/seido-lab/asclepius/pkg/service/modelstore"
	"github.com/seido-lab/asclepius/pkg/service/vision"
	"github.com/seido-lab/asclepius/pkg/usecase"
)

type stubEngine struct {
	mu       sync.Mutex
	score    float32
	err      error
	calls    int
	inputLen int
}

var _ interfaces.InferenceEngine = &stubEngine{}

func (e *stubEngine) Infer(ctx context.Context, input []float32) (float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.inputLen = len(input)
	if e.err != nil {
		return 0, e.err
	}
	return e.score, nil
}

func (e *stubEngine) Close() error {
	return nil
}

func noBootstrap(t *testing.T) usecase.EngineBootstrap {
	t.Helper()
	return func(ctx context.Context) (interfaces.InferenceEngine, error) {
		t.Fatal("bootstrap must not be called when an engine is injected")
		return nil, nil
	}
}

func testImage(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	gt.NoError(t, png.Encode(&buf, img)).Required()
	return buf.Bytes()
}

func TestUseCases_Predict(t *testing.T) {
	ctx := context.Background()

	t.Run("high score persists a Cancer record", func(t *testing.T) {
		repo := memory.New()
		now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
		uc := usecase.New(repo, noBootstrap(t),
			usecase.WithEngine(&stubEngine{score: 0.91}),
			usecase.WithClock(func() time.Time { return now }),
		)

		p, err := uc.Predict(ctx, testImage(t))
		gt.NoError(t, err).Required()
		gt.Value(t, p.Result).Equal(types.ResultCancer)
		gt.Value(t, p.Suggestion).Equal("see a doctor immediately")

		// The persisted record and the returned one are the same value
		stored, err := repo.Prediction().Get(ctx, p.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, stored.CreatedAt.Equal(p.CreatedAt)).True()
		gt.Value(t, stored.Result).Equal(p.Result)
	})

	t.Run("preprocessor override drives the tensor shape", func(t *testing.T) {
		repo := memory.New()
		engine := &stubEngine{score: 0.4}
		uc := usecase.New(repo, noBootstrap(t),
			usecase.WithEngine(engine),
			usecase.WithPreprocessor(vision.New(vision.WithSize(96))),
		)

		_, err := uc.Predict(ctx, testImage(t))
		gt.NoError(t, err).Required()
		gt.Value(t, engine.inputLen).Equal(96 * 96 * 3)
	})

	t.Run("threshold boundary goes to Non-cancer", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, noBootstrap(t),
			usecase.WithEngine(&stubEngine{score: 0.5}))

		p, err := uc.Predict(ctx, testImage(t))
		gt.NoError(t, err).Required()
		gt.Value(t, p.Result).Equal(types.ResultNonCancer)
		gt.Value(t, p.Suggestion).Equal("no cancer detected")
	})

	t.Run("undecodable image fails before inference", func(t *testing.T) {
		repo := memory.New()
		engine := &stubEngine{score: 0.9}
		uc := usecase.New(repo, noBootstrap(t), usecase.WithEngine(engine))

		_, err := uc.Predict(ctx, []byte("not an image"))
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, vision.ErrDecode)).True()
		gt.Value(t, engine.calls).Equal(0)

		records, err := repo.Prediction().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(0)
	})

	t.Run("engine failure persists nothing", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, noBootstrap(t),
			usecase.WithEngine(&stubEngine{err: goerr.New("runtime exploded")}))

		_, err := uc.Predict(ctx, testImage(t))
		gt.Error(t, err)

		records, err := repo.Prediction().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(0)
	})

	t.Run("bootstrap failure surfaces model unavailability", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, func(ctx context.Context) (interfaces.InferenceEngine, error) {
			return nil, goerr.Wrap(modelstore.ErrModelUnavailable, "descriptor missing")
		})

		_, err := uc.Predict(ctx, testImage(t))
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, modelstore.ErrModelUnavailable)).True()
	})

	t.Run("bootstrap runs once across requests", func(t *testing.T) {
		repo := memory.New()
		var bootCalls int
		uc := usecase.New(repo, func(ctx context.Context) (interfaces.InferenceEngine, error) {
			bootCalls++
			return &stubEngine{score: 0.3}, nil
		})

		for i := 0; i < 5; i++ {
			_, err := uc.Predict(ctx, testImage(t))
			gt.NoError(t, err).Required()
		}
		gt.Value(t, bootCalls).Equal(1)
	})

	t.Run("failed bootstrap is latched, not retried", func(t *testing.T) {
		repo := memory.New()
		var bootCalls int
		uc := usecase.New(repo, func(ctx context.Context) (interfaces.InferenceEngine, error) {
			bootCalls++
			return nil, goerr.Wrap(modelstore.ErrModelUnavailable, "bucket empty")
		})

		for i := 0; i < 3; i++ {
			_, err := uc.Predict(ctx, testImage(t))
			gt.Error(t, err)
		}
		gt.Value(t, bootCalls).Equal(1)
	})
}

func TestUseCases_ListHistories(t *testing.T) {
	ctx := context.Background()

	t.Run("returns persisted records", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, noBootstrap(t),
			usecase.WithEngine(&stubEngine{score: 0.8}))

		first, err := uc.Predict(ctx, testImage(t))
		gt.NoError(t, err).Required()
		second, err := uc.Predict(ctx, testImage(t))
		gt.NoError(t, err).Required()

		records, err := uc.ListHistories(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(2)

		ids := map[types.PredictionID]bool{}
		for _, p := range records {
			ids[p.ID] = true
		}
		gt.Bool(t, ids[first.ID]).True()
		gt.Bool(t, ids[second.ID]).True()
	})

	t.Run("empty store", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, noBootstrap(t),
			usecase.WithEngine(&stubEngine{score: 0.8}))

		records, err := uc.ListHistories(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(0)
	})
}
