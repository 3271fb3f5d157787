package types

import (
	"regexp"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// PredictionID is a UUID-based identifier for a prediction record
type PredictionID string

var predictionIDPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// NewPredictionID generates a new UUID v4 PredictionID
func NewPredictionID() PredictionID {
	return PredictionID(uuid.New().String())
}

// Validate checks if the PredictionID is a version-4 UUID
func (x PredictionID) Validate() error {
	if x == "" {
		return goerr.New("prediction ID cannot be empty")
	}
	if !predictionIDPattern.MatchString(string(x)) {
		return goerr.New("prediction ID must be a version-4 UUID", goerr.V("id", x))
	}
	return nil
}

// String returns the string representation of PredictionID
func (x PredictionID) String() string {
	return string(x)
}
