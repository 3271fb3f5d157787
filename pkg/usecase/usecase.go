package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/seido-lab/asclepius/pkg/domain/interfaces"
	"github.com/seido-lab/asclepius/pkg/service/vision"
)

// EngineBootstrap builds the inference engine on first need. It typically
// downloads the model artifacts and loads the ONNX session.
type EngineBootstrap func(ctx context.Context) (interfaces.InferenceEngine, error)

type UseCases struct {
	repo         interfaces.Repository
	bootstrap    EngineBootstrap
	preprocessor *vision.Preprocessor
	now          func() time.Time

	// Lazy-once engine handle: concurrent first requests share a single
	// download and load instead of racing on the cache directory.
	engineOnce sync.Once
	engine     interfaces.InferenceEngine
	engineErr  error
}

type Option func(*UseCases)

// WithEngine injects an already-loaded engine, bypassing the bootstrap.
// Used by tests and by callers that pre-warm the model.
func WithEngine(engine interfaces.InferenceEngine) Option {
	return func(uc *UseCases) {
		uc.engine = engine
	}
}

// WithPreprocessor overrides the default 224×224 preprocessor
func WithPreprocessor(p *vision.Preprocessor) Option {
	return func(uc *UseCases) {
		uc.preprocessor = p
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, bootstrap EngineBootstrap, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:         repo,
		bootstrap:    bootstrap,
		preprocessor: vision.New(),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// ensureEngine returns the process-wide engine handle, loading it on first
// call. The load result, error included, is latched for the process
// lifetime: a broken model install does not get retried per request.
func (uc *UseCases) ensureEngine(ctx context.Context) (interfaces.InferenceEngine, error) {
	uc.engineOnce.Do(func() {
		if uc.engine != nil {
			return
		}
		uc.engine, uc.engineErr = uc.bootstrap(ctx)
	})
	return uc.engine, uc.engineErr
}

// Close releases the engine handle if one was loaded
func (uc *UseCases) Close() error {
	if uc.engine != nil {
		return uc.engine.Close()
	}
	return nil
}
