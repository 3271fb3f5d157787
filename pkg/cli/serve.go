package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"

	"github.com/seido-lab/asclepius/pkg/cli/config"
	httpctrl "github.com/seido-lab/asclepius/pkg/controller/http"
	"github.com/seido-lab/asclepius/pkg/usecase"
	"github.com/seido-lab/asclepius/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var sentryDSN string
	var repoCfg config.Repository
	var modelCfg config.Model
	var profileCfg config.Profile

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("ASCLEPIUS_ADDR", "PORT"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error reporting (optional)",
			Sources:     cli.EnvVars("ASCLEPIUS_SENTRY_DSN"),
			Destination: &sentryDSN,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, modelCfg.Flags()...)
	flags = append(flags, profileCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// PORT-style env vars carry a bare port number
			if !strings.Contains(addr, ":") {
				addr = ":" + addr
			}

			if sentryDSN != "" {
				if err := sentry.Init(sentry.ClientOptions{
					Dsn:     sentryDSN,
					Release: c.Root().Version,
				}); err != nil {
					return goerr.Wrap(err, "failed to initialize sentry")
				}
				defer sentry.Flush(2 * time.Second)
				logging.Default().Info("Sentry error reporting enabled")
			}

			// Load the service profile (upload limits, endpoint toggles)
			profile, err := profileCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load service profile")
			}

			// Initialize repository based on backend type
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			// The model is loaded lazily: the first prediction triggers the
			// download and session build, later ones reuse the handle.
			uc := usecase.New(repo, modelCfg.Bootstrap())
			defer func() {
				if err := uc.Close(); err != nil {
					logging.Default().Error("failed to close inference engine", "error", err.Error())
				}
			}()

			handler := httpctrl.New(uc,
				httpctrl.WithMaxUploadSize(profile.Upload.MaxSize),
				httpctrl.WithExplicitSizeCheck(profile.Upload.ExplicitSizeCheck),
				httpctrl.WithHistories(profile.Endpoints.Histories),
			)

			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"max_upload_size", profile.Upload.MaxSize,
					"explicit_size_check", profile.Upload.ExplicitSizeCheck,
					"histories", profile.Endpoints.Histories,
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
