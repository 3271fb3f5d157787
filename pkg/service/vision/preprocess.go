package vision

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/m-mizutani/goerr/v2"
	"github.com/nfnt/resize"
)

// ErrDecode is returned when the uploaded bytes are not a decodable image
var ErrDecode = goerr.New("failed to decode image")

const (
	// DefaultImageSize is the square resolution the classifier expects
	DefaultImageSize = 224
	channels         = 3
)

// Preprocessor normalizes arbitrary uploaded images into the fixed-shape
// tensor the model consumes.
type Preprocessor struct {
	size int
}

type Option func(*Preprocessor)

func WithSize(size int) Option {
	return func(p *Preprocessor) {
		p.size = size
	}
}

func New(opts ...Option) *Preprocessor {
	p := &Preprocessor{
		size: DefaultImageSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size returns the configured square resolution
func (p *Preprocessor) Size() int {
	return p.size
}

// TensorLen returns the length of the output tensor (1×size×size×3)
func (p *Preprocessor) TensorLen() int {
	return p.size * p.size * channels
}

// Preprocess decodes the image, resizes it to size×size with Lanczos
// resampling and converts the pixels to RGB float32 in [0,1]. The output
// is a flat NHWC tensor with a leading batch dimension of 1.
func (p *Preprocessor) Preprocess(data []byte) ([]float32, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(ErrDecode, "unsupported image data", goerr.V("cause", err.Error()))
	}

	resized := resize.Resize(uint(p.size), uint(p.size), img, resize.Lanczos3)

	out := make([]float32, p.TensorLen())
	for y := 0; y < p.size; y++ {
		for x := 0; x < p.size; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()

			idx := (y*p.size + x) * channels
			out[idx] = float32(r>>8) / 255.0
			out[idx+1] = float32(g>>8) / 255.0
			out[idx+2] = float32(b>>8) / 255.0
		}
	}

	return out, nil
}
