package engine

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/seido-lab/asclepius/pkg/domain/interfaces"
	"github.com/seido-lab/asclepius/pkg/domain/model"
	ort "github.com/yalue/onnxruntime_go"
)

var ortEnv struct {
	once sync.Once
	err  error
}

// initEnvironment initializes the ONNX runtime once per process. libPath
// may be empty, in which case the runtime is resolved from the default
// library search path.
func initEnvironment(libPath string) error {
	ortEnv.once.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// ONNX runs the classifier graph through ONNX Runtime. The session reuses
// one pre-allocated input/output tensor pair, so Run is serialized with a
// mutex.
type ONNX struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	inputLen     int
}

var _ interfaces.InferenceEngine = &ONNX{}

type Option func(*config)

type config struct {
	libraryPath string
}

// WithLibraryPath points the runtime at a specific onnxruntime shared
// library instead of the default search path.
func WithLibraryPath(path string) Option {
	return func(c *config) {
		c.libraryPath = path
	}
}

// New loads the serialized graph named by the descriptor from dir and
// builds an inference-ready session.
func New(desc *model.Descriptor, dir string, opts ...Option) (*ONNX, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := initEnvironment(cfg.libraryPath); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize ONNX environment")
	}

	inputShape := ort.NewShape(desc.InputShape...)
	outputShape := ort.NewShape(outputShapeOf(desc)...)

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create input tensor")
	}

	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, goerr.Wrap(err, "failed to create output tensor")
	}

	graphPath := filepath.Join(dir, desc.Graph)
	session, err := ort.NewAdvancedSession(graphPath,
		[]string{desc.GraphInputName()}, []string{desc.GraphOutputName()},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, goerr.Wrap(err, "failed to create ONNX session", goerr.V("graph", graphPath))
	}

	return &ONNX{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		inputLen:     len(inputTensor.GetData()),
	}, nil
}

func outputShapeOf(desc *model.Descriptor) []int64 {
	if len(desc.OutputShape) > 0 {
		return desc.OutputShape
	}
	return []int64{1, 1}
}

// Infer runs one forward pass and returns the scalar score
func (e *ONNX) Infer(ctx context.Context, input []float32) (float32, error) {
	if len(input) != e.inputLen {
		return 0, goerr.New("unexpected input tensor length",
			goerr.V("expected", e.inputLen), goerr.V("actual", len(input)))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	copy(e.inputTensor.GetData(), input)

	if err := e.session.Run(); err != nil {
		return 0, goerr.Wrap(err, "inference failed")
	}

	output := e.outputTensor.GetData()
	if len(output) == 0 {
		return 0, goerr.New("model produced no output")
	}

	return output[0], nil
}

func (e *ONNX) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.inputTensor != nil {
		e.inputTensor.Destroy()
		e.inputTensor = nil
	}
	if e.outputTensor != nil {
		e.outputTensor.Destroy()
		e.outputTensor = nil
	}
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	return nil
}
