package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/seido-lab/asclepius/pkg/domain/types"
)

func TestResultFromScore(t *testing.T) {
	tests := []struct {
		name  string
		score float32
		want  types.ResultLabel
	}{
		{
			name:  "high score",
			score: 0.99,
			want:  types.ResultCancer,
		},
		{
			name:  "just above threshold",
			score: 0.50001,
			want:  types.ResultCancer,
		},
		{
			name:  "exactly at threshold",
			score: 0.5,
			want:  types.ResultNonCancer,
		},
		{
			name:  "below threshold",
			score: 0.1,
			want:  types.ResultNonCancer,
		},
		{
			name:  "zero",
			score: 0,
			want:  types.ResultNonCancer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, types.ResultFromScore(tt.score)).Equal(tt.want)
		})
	}
}

func TestResultLabel_Suggestion(t *testing.T) {
	gt.Value(t, types.ResultCancer.Suggestion()).Equal("see a doctor immediately")
	gt.Value(t, types.ResultNonCancer.Suggestion()).Equal("no cancer detected")
}

func TestParseResultLabel(t *testing.T) {
	got, err := types.ParseResultLabel("Cancer")
	gt.NoError(t, err)
	gt.Value(t, got).Equal(types.ResultCancer)

	got, err = types.ParseResultLabel("Non-cancer")
	gt.NoError(t, err)
	gt.Value(t, got).Equal(types.ResultNonCancer)

	_, err = types.ParseResultLabel("benign")
	gt.Error(t, err)

	_, err = types.ParseResultLabel("")
	gt.Error(t, err)
}

func TestAllResultLabels(t *testing.T) {
	labels := types.AllResultLabels()
	gt.Array(t, labels).Length(2)
	for _, label := range labels {
		gt.Bool(t, label.IsValid()).True()
	}
}
