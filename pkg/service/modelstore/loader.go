package modelstore

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/seido-lab/asclepius/pkg/domain/interfaces"
	"github.com/seido-lab/asclepius/pkg/domain/model"
	"github.com/seido-lab/asclepius/pkg/utils/logging"
	"github.com/seido-lab/asclepius/pkg/utils/safe"
	"golang.org/x/sync/errgroup"
)

// ErrModelUnavailable is returned when the remote store lacks the model
// descriptor or a referenced weight file, or when the local cache cannot
// be written.
var ErrModelUnavailable = goerr.New("model is unavailable")

const (
	// DefaultPrefix is the remote object prefix holding the model artifacts
	DefaultPrefix = "model/"
	// DefaultDir is the local cache directory
	DefaultDir = "model"

	downloadConcurrency = 4
)

// Loader mirrors the model artifacts from the object store into a flat
// local directory. Remote path prefixes are stripped, so the cache holds
// model.json next to its weight files.
type Loader struct {
	store  interfaces.ObjectStore
	prefix string
	dir    string
}

type LoaderOption func(*Loader)

func WithPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.prefix = prefix
	}
}

func WithDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.dir = dir
	}
}

func NewLoader(store interfaces.ObjectStore, opts ...LoaderOption) *Loader {
	l := &Loader{
		store:  store,
		prefix: DefaultPrefix,
		dir:    DefaultDir,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir returns the local cache directory
func (l *Loader) Dir() string {
	return l.dir
}

// Ensure makes the full artifact set available locally and returns the
// parsed descriptor. The descriptor is always re-fetched; weight files
// already present in the cache are kept, so a warm cache makes Ensure
// idempotent. A single failed download aborts the whole load.
func (l *Loader) Ensure(ctx context.Context) (*model.Descriptor, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, goerr.Wrap(ErrModelUnavailable, "failed to create model directory",
			goerr.V("dir", l.dir), goerr.V("cause", err.Error()))
	}

	names, err := l.store.List(ctx, l.prefix)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list model objects", goerr.V("prefix", l.prefix))
	}

	descriptorObject := ""
	for _, name := range names {
		if path.Base(name) != model.DescriptorFileName {
			continue
		}
		if descriptorObject != "" {
			return nil, goerr.Wrap(ErrModelUnavailable, "multiple model descriptors found",
				goerr.V("prefix", l.prefix))
		}
		descriptorObject = name
	}
	if descriptorObject == "" {
		return nil, goerr.Wrap(ErrModelUnavailable, "model descriptor not found",
			goerr.V("prefix", l.prefix))
	}

	if err := l.download(ctx, descriptorObject); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(l.dir, model.DescriptorFileName))
	if err != nil {
		return nil, goerr.Wrap(ErrModelUnavailable, "failed to read model descriptor",
			goerr.V("cause", err.Error()))
	}

	desc, err := model.ParseDescriptor(data)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid model descriptor", goerr.V("object", descriptorObject))
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(downloadConcurrency)
	for _, weight := range desc.Weights {
		eg.Go(func() error {
			local := filepath.Join(l.dir, weight)
			if st, err := os.Stat(local); err == nil && st.Size() > 0 {
				logging.From(ctx).Debug("weight file already cached", "file", weight)
				return nil
			}
			return l.download(ctx, l.prefix+weight)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for _, weight := range desc.Weights {
		if err := verifyReadable(filepath.Join(l.dir, weight)); err != nil {
			return nil, err
		}
	}

	logging.From(ctx).Info("model artifacts available",
		"dir", l.dir, "graph", desc.Graph, "weights", len(desc.Weights))

	return desc, nil
}

// download fetches one object into the cache, flattening its remote path
func (l *Loader) download(ctx context.Context, object string) error {
	r, err := l.store.Open(ctx, object)
	if err != nil {
		return goerr.Wrap(err, "failed to download model object", goerr.V("object", object))
	}
	defer safe.Close(ctx, r)

	local := filepath.Join(l.dir, path.Base(object))
	f, err := os.Create(local)
	if err != nil {
		return goerr.Wrap(ErrModelUnavailable, "failed to create local file",
			goerr.V("path", local), goerr.V("cause", err.Error()))
	}

	if _, err := io.Copy(f, r); err != nil {
		safe.Close(ctx, f)
		_ = os.Remove(local)
		return goerr.Wrap(ErrModelUnavailable, "failed to write local file",
			goerr.V("path", local), goerr.V("cause", err.Error()))
	}

	if err := f.Close(); err != nil {
		return goerr.Wrap(ErrModelUnavailable, "failed to flush local file",
			goerr.V("path", local), goerr.V("cause", err.Error()))
	}

	return nil
}

func verifyReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return goerr.Wrap(ErrModelUnavailable, "weight file is not readable",
			goerr.V("path", path), goerr.V("cause", err.Error()))
	}
	return f.Close()
}
