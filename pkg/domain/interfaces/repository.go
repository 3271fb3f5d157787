package interfaces

import (
	"context"

	"github.com/seido-lab/asclepius/pkg/domain/model"
	"github.com/seido-lab/asclepius/pkg/domain/types"
)

// Repository is the datastore facade
type Repository interface {
	Prediction() PredictionRepository
	Close() error
}

// PredictionRepository persists classification results
type PredictionRepository interface {
	// Put is an idempotent upsert keyed by prediction ID
	Put(ctx context.Context, p *model.Prediction) error
	// Get retrieves a single record by ID
	Get(ctx context.Context, id types.PredictionID) (*model.Prediction, error)
	// List returns every stored record, newest first
	List(ctx context.Context) ([]*model.Prediction, error)
}
