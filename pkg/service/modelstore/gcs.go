package modelstore

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/seido-lab/asclepius/pkg/domain/interfaces"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCS is the Google Cloud Storage backend of the model object store
type GCS struct {
	client *storage.Client
	bucket string
}

var _ interfaces.ObjectStore = &GCS{}

type GCSOption func(*gcsConfig)

type gcsConfig struct {
	clientOptions []option.ClientOption
}

// WithCredentialsFile authenticates with a service account key file
func WithCredentialsFile(path string) GCSOption {
	return func(c *gcsConfig) {
		c.clientOptions = append(c.clientOptions, option.WithCredentialsFile(path))
	}
}

func NewGCS(ctx context.Context, bucket string, opts ...GCSOption) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	var cfg gcsConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	client, err := storage.NewClient(ctx, cfg.clientOptions...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	return &GCS{
		client: client,
		bucket: bucket,
	}, nil
}

func (s *GCS) List(ctx context.Context, prefix string) ([]string, error) {
	iter := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var names []string
	for {
		attrs, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list objects",
				goerr.V("bucket", s.bucket), goerr.V("prefix", prefix))
		}
		names = append(names, attrs.Name)
	}

	return names, nil
}

func (s *GCS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	r, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return nil, goerr.Wrap(ErrModelUnavailable, "object not found",
				goerr.V("bucket", s.bucket), goerr.V("object", name))
		}
		return nil, goerr.Wrap(err, "failed to open object",
			goerr.V("bucket", s.bucket), goerr.V("object", name))
	}
	return r, nil
}

func (s *GCS) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
