package interfaces

import (
	"context"
	"io"
)

// ObjectStore abstracts the remote object storage holding model artifacts
type ObjectStore interface {
	// List returns the object names under the given prefix
	List(ctx context.Context, prefix string) ([]string, error)
	// Open returns a reader for the named object. The caller closes it.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Close() error
}
