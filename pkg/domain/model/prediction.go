package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/seido-lab/asclepius/pkg/domain/types"
)

// Prediction is one persisted classification result. Records are written
// once and never mutated or deleted.
type Prediction struct {
	ID         types.PredictionID
	Result     types.ResultLabel
	Suggestion string
	CreatedAt  time.Time
}

// NewPrediction builds a record from a model output score. The suggestion
// is derived from the label so the two always stay consistent.
func NewPrediction(score float32, now time.Time) *Prediction {
	label := types.ResultFromScore(score)
	return &Prediction{
		ID:         types.NewPredictionID(),
		Result:     label,
		Suggestion: label.Suggestion(),
		CreatedAt:  now.UTC(),
	}
}

// Validate checks the record invariants before persisting
func (x *Prediction) Validate() error {
	if err := x.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid prediction ID")
	}
	if !x.Result.IsValid() {
		return goerr.New("invalid result label", goerr.V("result", x.Result))
	}
	if x.Suggestion == "" {
		return goerr.New("suggestion is required", goerr.V("id", x.ID))
	}
	if x.Suggestion != x.Result.Suggestion() {
		return goerr.New("suggestion does not match result",
			goerr.V("result", x.Result), goerr.V("suggestion", x.Suggestion))
	}
	if x.CreatedAt.IsZero() {
		return goerr.New("createdAt is required", goerr.V("id", x.ID))
	}
	return nil
}
