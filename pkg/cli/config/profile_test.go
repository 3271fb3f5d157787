package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "profile.toml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600)).Required()
	return path
}

func TestProfile_Configure(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		var cfg Profile

		profile, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, profile.Upload.MaxSize).Equal(int64(5_000_000))
		gt.Bool(t, profile.Upload.ExplicitSizeCheck).False()
		gt.Bool(t, profile.Endpoints.Histories).True()
	})

	t.Run("legacy revision profile", func(t *testing.T) {
		cfg := Profile{path: writeProfile(t, `
[upload]
max_size = 1000000
explicit_size_check = true

[endpoints]
histories = true
`)}

		profile, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, profile.Upload.MaxSize).Equal(int64(1_000_000))
		gt.Bool(t, profile.Upload.ExplicitSizeCheck).True()
		gt.Bool(t, profile.Endpoints.Histories).True()
	})

	t.Run("partial profile keeps defaults", func(t *testing.T) {
		cfg := Profile{path: writeProfile(t, `
[upload]
max_size = 2000000
`)}

		profile, err := cfg.Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, profile.Upload.MaxSize).Equal(int64(2_000_000))
		gt.Bool(t, profile.Endpoints.Histories).True()
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := Profile{path: filepath.Join(t.TempDir(), "nope.toml")}

		_, err := cfg.Configure()
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, ErrProfileNotFound)).True()
	})

	t.Run("broken TOML", func(t *testing.T) {
		cfg := Profile{path: writeProfile(t, `[upload`)}

		_, err := cfg.Configure()
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, ErrInvalidProfile)).True()
	})

	t.Run("non-positive max size", func(t *testing.T) {
		cfg := Profile{path: writeProfile(t, `
[upload]
max_size = 0
`)}

		_, err := cfg.Configure()
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, ErrInvalidProfile)).True()
	})
}
