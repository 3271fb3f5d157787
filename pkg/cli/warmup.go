package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/seido-lab/asclepius/pkg/cli/config"
	"github.com/seido-lab/asclepius/pkg/utils/logging"
	"github.com/seido-lab/asclepius/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdWarmup() *cli.Command {
	var modelCfg config.Model

	return &cli.Command{
		Name:    "warmup",
		Aliases: []string{"w"},
		Usage:   "Pre-fetch the model artifacts into the local cache",
		Flags:   modelCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			loader, store, err := modelCfg.Loader(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, store)

			desc, err := loader.Ensure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to warm up model cache")
			}

			logging.Default().Info("Model cache is warm",
				"dir", loader.Dir(),
				"graph", desc.Graph,
				"weights", len(desc.Weights),
				"image_size", desc.ImageSize,
			)
			return nil
		},
	}
}
