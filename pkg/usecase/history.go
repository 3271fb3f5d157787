package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/seido-lab/asclepius/pkg/domain/model"
)

// ListHistories returns every persisted prediction record
func (uc *UseCases) ListHistories(ctx context.Context) ([]*model.Prediction, error) {
	records, err := uc.repo.Prediction().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(ErrHistoryFailed, "failed to list predictions",
			goerr.V("cause", err.Error()))
	}
	return records, nil
}
