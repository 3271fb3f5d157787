package config

import (
	"io"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/seido-lab/asclepius/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Logger holds CLI flags for logger configuration
type Logger struct {
	level  string
	format string
	output string
}

// Flags returns CLI flags for logger configuration
func (x *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("ASCLEPIUS_LOG_LEVEL"),
			Destination: &x.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console or json)",
			Value:       "console",
			Sources:     cli.EnvVars("ASCLEPIUS_LOG_FORMAT"),
			Destination: &x.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output destination ('-' for stdout, or a file path)",
			Value:       "-",
			Sources:     cli.EnvVars("ASCLEPIUS_LOG_OUTPUT"),
			Destination: &x.output,
		},
	}
}

// Configure builds the process-wide logger from the flags and installs it
// as the default. The returned closer releases the output file, if any.
func (x *Logger) Configure() (func(), error) {
	level, err := logging.ParseLevel(x.level)
	if err != nil {
		return nil, err
	}

	format, err := logging.ParseFormat(x.format)
	if err != nil {
		return nil, err
	}

	var w io.Writer = os.Stdout
	closer := func() {}
	if x.output != "-" && x.output != "" {
		f, err := os.OpenFile(x.output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log output", goerr.V("path", x.output))
		}
		w = f
		closer = func() {
			_ = f.Close()
		}
	}

	logging.SetDefault(logging.New(w, level, format))
	return closer, nil
}

// LogValue renders the config for startup logging
func (x Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", x.level),
		slog.String("format", x.format),
		slog.String("output", x.output),
	)
}
