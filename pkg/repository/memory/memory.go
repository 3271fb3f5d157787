package memory

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/seido-lab/asclepius/pkg/domain/interfaces"
)

// ErrNotFound is returned when the requested record does not exist
var ErrNotFound = goerr.New("record not found")

// Memory is an in-memory repository for development and tests
type Memory struct {
	prediction *predictionRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		prediction: newPredictionRepository(),
	}
}

func (m *Memory) Prediction() interfaces.PredictionRepository {
	return m.prediction
}

func (m *Memory) Close() error {
	return nil
}
