package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/seido-lab/asclepius/pkg/domain/interfaces"
	"github.com/seido-lab/asclepius/pkg/service/engine"
	"github.com/seido-lab/asclepius/pkg/service/modelstore"
	"github.com/seido-lab/asclepius/pkg/usecase"
	"github.com/seido-lab/asclepius/pkg/utils/logging"
	"github.com/seido-lab/asclepius/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// Model holds CLI flags for the model store and inference runtime
type Model struct {
	bucket          string
	prefix          string
	dir             string
	credentialsFile string
	runtimeLib      string
}

// Flags returns CLI flags for model configuration
func (x *Model) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "model-bucket",
			Usage:       "GCS bucket holding the model artifacts (required)",
			Required:    true,
			Sources:     cli.EnvVars("ASCLEPIUS_MODEL_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "model-prefix",
			Usage:       "Object prefix of the model artifacts",
			Value:       modelstore.DefaultPrefix,
			Sources:     cli.EnvVars("ASCLEPIUS_MODEL_PREFIX"),
			Destination: &x.prefix,
		},
		&cli.StringFlag{
			Name:        "model-dir",
			Usage:       "Local directory caching the model artifacts",
			Value:       modelstore.DefaultDir,
			Sources:     cli.EnvVars("ASCLEPIUS_MODEL_DIR"),
			Destination: &x.dir,
		},
		&cli.StringFlag{
			Name:        "credentials-file",
			Usage:       "Path to a service account key file (optional, ADC otherwise)",
			Sources:     cli.EnvVars("ASCLEPIUS_CREDENTIALS_FILE"),
			Destination: &x.credentialsFile,
		},
		&cli.StringFlag{
			Name:        "onnxruntime-lib",
			Usage:       "Path to the onnxruntime shared library (optional)",
			Sources:     cli.EnvVars("ASCLEPIUS_ONNXRUNTIME_LIB"),
			Destination: &x.runtimeLib,
		},
	}
}

// Loader builds the artifact loader over a fresh object store client. The
// caller closes the returned store.
func (x *Model) Loader(ctx context.Context) (*modelstore.Loader, interfaces.ObjectStore, error) {
	var gcsOpts []modelstore.GCSOption
	if x.credentialsFile != "" {
		gcsOpts = append(gcsOpts, modelstore.WithCredentialsFile(x.credentialsFile))
	}

	store, err := modelstore.NewGCS(ctx, x.bucket, gcsOpts...)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize model store")
	}

	loader := modelstore.NewLoader(store,
		modelstore.WithPrefix(x.prefix),
		modelstore.WithDir(x.dir),
	)

	return loader, store, nil
}

// Bootstrap returns the lazy engine constructor wired into the use case
// layer: mirror the artifacts locally, then load the ONNX session.
func (x *Model) Bootstrap() usecase.EngineBootstrap {
	return func(ctx context.Context) (interfaces.InferenceEngine, error) {
		loader, store, err := x.Loader(ctx)
		if err != nil {
			return nil, err
		}
		defer safe.Close(ctx, store)

		desc, err := loader.Ensure(ctx)
		if err != nil {
			return nil, err
		}

		var engineOpts []engine.Option
		if x.runtimeLib != "" {
			engineOpts = append(engineOpts, engine.WithLibraryPath(x.runtimeLib))
		}

		eng, err := engine.New(desc, loader.Dir(), engineOpts...)
		if err != nil {
			return nil, err
		}

		logging.From(ctx).Info("inference engine ready",
			"bucket", x.bucket, "dir", x.dir, "graph", desc.Graph)

		return eng, nil
	}
}
