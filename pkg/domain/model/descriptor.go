package model

import (
	"encoding/json"
	"path"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// DescriptorFileName is the fixed name of the model descriptor object in
// the remote store and in the local cache.
const DescriptorFileName = "model.json"

// Descriptor is the model metadata file stored alongside the weight
// artifacts. Graph names the serialized graph artifact; Weights lists every
// binary artifact the runtime needs on disk, Graph included.
type Descriptor struct {
	Format      string   `json:"format"`
	Graph       string   `json:"graph"`
	Weights     []string `json:"weights"`
	InputName   string   `json:"input_name"`
	OutputName  string   `json:"output_name"`
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	ImageSize   int      `json:"image_size"`
}

// ParseDescriptor decodes and validates a model.json payload
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, goerr.Wrap(err, "failed to parse model descriptor")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the descriptor invariants
func (x *Descriptor) Validate() error {
	if x.Graph == "" {
		return goerr.New("descriptor has no graph artifact")
	}
	if len(x.Weights) == 0 {
		return goerr.New("descriptor references no weight files")
	}
	for _, w := range x.Weights {
		if path.Base(w) != w {
			return goerr.New("weight file name must be flat", goerr.V("file", w))
		}
		if !strings.HasSuffix(w, ".bin") {
			return goerr.New("weight file must have .bin suffix", goerr.V("file", w))
		}
	}
	if !x.references(x.Graph) {
		return goerr.New("graph artifact is not listed in weights", goerr.V("graph", x.Graph))
	}
	if x.ImageSize <= 0 {
		return goerr.New("image size must be positive", goerr.V("image_size", x.ImageSize))
	}
	if len(x.InputShape) != 4 {
		return goerr.New("input shape must have 4 dimensions", goerr.V("input_shape", x.InputShape))
	}
	return nil
}

func (x *Descriptor) references(name string) bool {
	for _, w := range x.Weights {
		if w == name {
			return true
		}
	}
	return false
}

// InputName and OutputName default to the conventional ONNX names when the
// descriptor omits them.

func (x *Descriptor) GraphInputName() string {
	if x.InputName != "" {
		return x.InputName
	}
	return "input"
}

func (x *Descriptor) GraphOutputName() string {
	if x.OutputName != "" {
		return x.OutputName
	}
	return "output"
}
