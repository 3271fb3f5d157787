package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/seido-lab/asclepius/pkg/domain/model"
	"github.com/seido-lab/asclepius/pkg/domain/types"
)

type predictionRepository struct {
	mu          sync.RWMutex
	predictions map[types.PredictionID]*model.Prediction
}

func newPredictionRepository() *predictionRepository {
	return &predictionRepository{
		predictions: make(map[types.PredictionID]*model.Prediction),
	}
}

// copyPrediction creates a deep copy of a prediction record
func copyPrediction(p *model.Prediction) *model.Prediction {
	copied := *p
	return &copied
}

func (r *predictionRepository) Put(ctx context.Context, p *model.Prediction) error {
	if err := p.Validate(); err != nil {
		return goerr.Wrap(err, "invalid prediction record")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.predictions[p.ID] = copyPrediction(p)
	return nil
}

func (r *predictionRepository) Get(ctx context.Context, id types.PredictionID) (*model.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.predictions[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "prediction not found", goerr.V("id", id))
	}

	return copyPrediction(p), nil
}

func (r *predictionRepository) List(ctx context.Context) ([]*model.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*model.Prediction, 0, len(r.predictions))
	for _, p := range r.predictions {
		results = append(results, copyPrediction(p))
	}

	// Newest first, matching the Firestore backend ordering
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	return results, nil
}
