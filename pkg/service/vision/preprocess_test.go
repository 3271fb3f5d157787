package vision_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/seido-lab/asclepius/pkg/service/vision"
)

// encodeGradient builds a small PNG with varied pixel values
func encodeGradient(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: uint8((x + y) * 255 / (w + h)),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	gt.NoError(t, png.Encode(&buf, img)).Required()
	return buf.Bytes()
}

func TestPreprocessor_Preprocess(t *testing.T) {
	p := vision.New()

	tests := []struct {
		name string
		w, h int
	}{
		{name: "landscape", w: 320, h: 180},
		{name: "portrait", w: 45, h: 90},
		{name: "already square", w: 224, h: 224},
		{name: "tiny", w: 3, h: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := p.Preprocess(encodeGradient(t, tt.w, tt.h))
			gt.NoError(t, err).Required()

			gt.Number(t, len(out)).Equal(224 * 224 * 3)
			for _, v := range out {
				gt.Bool(t, v >= 0 && v <= 1).True()
			}
		})
	}
}

func TestPreprocessor_Preprocess_NotAnImage(t *testing.T) {
	p := vision.New()

	_, err := p.Preprocess([]byte("definitely not pixels"))
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, vision.ErrDecode)).True()

	_, err = p.Preprocess(nil)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, vision.ErrDecode)).True()
}

func TestPreprocessor_WithSize(t *testing.T) {
	p := vision.New(vision.WithSize(96))

	out, err := p.Preprocess(encodeGradient(t, 128, 128))
	gt.NoError(t, err).Required()
	gt.Number(t, len(out)).Equal(96 * 96 * 3)
	gt.Value(t, p.Size()).Equal(96)
}

func TestPreprocessor_Deterministic(t *testing.T) {
	p := vision.New()
	data := encodeGradient(t, 100, 60)

	first, err := p.Preprocess(data)
	gt.NoError(t, err).Required()
	second, err := p.Preprocess(data)
	gt.NoError(t, err).Required()

	gt.Array(t, first).Equal(second)
}
