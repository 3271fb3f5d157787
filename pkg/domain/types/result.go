package types

import "github.com/m-mizutani/goerr/v2"

// ResultLabel represents the binary classification outcome of a prediction
type ResultLabel string

const (
	ResultCancer    ResultLabel = "Cancer"
	ResultNonCancer ResultLabel = "Non-cancer"
)

// ScoreThreshold is the decision boundary applied to the model output.
// A score strictly greater than the threshold is classified as Cancer.
const ScoreThreshold = 0.5

// AllResultLabels returns all valid result labels
func AllResultLabels() []ResultLabel {
	return []ResultLabel{
		ResultCancer,
		ResultNonCancer,
	}
}

// ResultFromScore derives the label from a model output score
func ResultFromScore(score float32) ResultLabel {
	if score > ScoreThreshold {
		return ResultCancer
	}
	return ResultNonCancer
}

// Suggestion returns the advisory message paired with the label
func (x ResultLabel) Suggestion() string {
	if x == ResultCancer {
		return "see a doctor immediately"
	}
	return "no cancer detected"
}

// IsValid checks if the result label is valid
func (x ResultLabel) IsValid() bool {
	switch x {
	case ResultCancer, ResultNonCancer:
		return true
	default:
		return false
	}
}

// String returns the string representation of the result label
func (x ResultLabel) String() string {
	return string(x)
}

// ParseResultLabel parses a string into a ResultLabel
func ParseResultLabel(s string) (ResultLabel, error) {
	label := ResultLabel(s)
	if !label.IsValid() {
		return "", goerr.New("invalid result label", goerr.V("label", s))
	}
	return label, nil
}
