package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/seido-lab/asclepius/pkg/domain/model"
	"github.com/seido-lab/asclepius/pkg/utils/logging"
)

// Predict runs the full pipeline over validated upload bytes: load the
// model (once per process), preprocess, infer, persist. The persisted
// record and the returned record are the same value, timestamp included.
func (uc *UseCases) Predict(ctx context.Context, image []byte) (*model.Prediction, error) {
	engine, err := uc.ensureEngine(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "model is not ready")
	}

	input, err := uc.preprocessor.Preprocess(image)
	if err != nil {
		return nil, err
	}

	score, err := engine.Infer(ctx, input)
	if err != nil {
		return nil, goerr.Wrap(err, "forward pass failed")
	}

	p := model.NewPrediction(score, uc.now())

	if err := uc.repo.Prediction().Put(ctx, p); err != nil {
		return nil, goerr.Wrap(ErrPersistenceFailed, "failed to save prediction",
			goerr.V("id", p.ID), goerr.V("cause", err.Error()))
	}

	logging.From(ctx).Info("prediction stored",
		"id", p.ID, "result", p.Result, "score", score)

	return p, nil
}
