package interfaces

import "context"

// InferenceEngine runs one forward pass over a preprocessed image tensor
// and returns the scalar score produced by the model.
type InferenceEngine interface {
	Infer(ctx context.Context, input []float32) (float32, error)
	Close() error
}
