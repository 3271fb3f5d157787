package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/seido-lab/asclepius/pkg/domain/model"
	"github.com/seido-lab/asclepius/pkg/domain/types"
)

func TestNewPrediction(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	t.Run("positive score", func(t *testing.T) {
		p := model.NewPrediction(0.93, now)
		gt.NoError(t, p.Validate())
		gt.Value(t, p.Result).Equal(types.ResultCancer)
		gt.Value(t, p.Suggestion).Equal("see a doctor immediately")
		gt.Value(t, p.CreatedAt).Equal(now)
	})

	t.Run("negative score", func(t *testing.T) {
		p := model.NewPrediction(0.05, now)
		gt.NoError(t, p.Validate())
		gt.Value(t, p.Result).Equal(types.ResultNonCancer)
		gt.Value(t, p.Suggestion).Equal("no cancer detected")
	})

	t.Run("timestamps are normalized to UTC", func(t *testing.T) {
		loc := time.FixedZone("JST", 9*3600)
		p := model.NewPrediction(0.7, time.Date(2025, 6, 1, 21, 30, 0, 0, loc))
		gt.Bool(t, p.CreatedAt.Equal(now)).True()
		gt.Value(t, p.CreatedAt.Location()).Equal(time.UTC)
	})
}

func TestPrediction_Validate(t *testing.T) {
	now := time.Now()

	t.Run("empty ID", func(t *testing.T) {
		p := model.NewPrediction(0.7, now)
		p.ID = ""
		gt.Error(t, p.Validate())
	})

	t.Run("invalid result", func(t *testing.T) {
		p := model.NewPrediction(0.7, now)
		p.Result = types.ResultLabel("Maybe")
		gt.Error(t, p.Validate())
	})

	t.Run("empty suggestion", func(t *testing.T) {
		p := model.NewPrediction(0.7, now)
		p.Suggestion = ""
		gt.Error(t, p.Validate())
	})

	t.Run("suggestion inconsistent with result", func(t *testing.T) {
		p := model.NewPrediction(0.7, now)
		p.Suggestion = "no cancer detected"
		gt.Error(t, p.Validate())
	})

	t.Run("zero timestamp", func(t *testing.T) {
		p := model.NewPrediction(0.7, now)
		p.CreatedAt = time.Time{}
		gt.Error(t, p.Validate())
	})
}
