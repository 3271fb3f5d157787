package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Profile is the service profile. The two historical revisions of the API
// (1 MB explicit size check + histories endpoint vs. 5 MB upload-layer cap
// only) are expressed as profile values of one flow.
type Profile struct {
	path string

	Upload    UploadProfile    `toml:"upload"`
	Endpoints EndpointsProfile `toml:"endpoints"`
}

type UploadProfile struct {
	// MaxSize is the upload byte cap, enforced by the upload layer
	MaxSize int64 `toml:"max_size"`
	// ExplicitSizeCheck additionally validates the declared file size
	// before inference and answers 413 with a dedicated message
	ExplicitSizeCheck bool `toml:"explicit_size_check"`
}

type EndpointsProfile struct {
	Histories bool `toml:"histories"`
}

// DefaultProfile is the current revision of the service behavior
func DefaultProfile() Profile {
	return Profile{
		Upload: UploadProfile{
			MaxSize:           5_000_000,
			ExplicitSizeCheck: false,
		},
		Endpoints: EndpointsProfile{
			Histories: true,
		},
	}
}

// Flags returns CLI flags for profile configuration
func (x *Profile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "profile",
			Usage:       "Path to a TOML service profile (optional)",
			Sources:     cli.EnvVars("ASCLEPIUS_PROFILE"),
			Destination: &x.path,
		},
	}
}

// Configure loads the profile file when one is given, otherwise returns
// the defaults.
func (x *Profile) Configure() (Profile, error) {
	profile := DefaultProfile()
	if x.path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(x.path)
	if err != nil {
		return profile, goerr.Wrap(ErrProfileNotFound, "failed to read profile",
			goerr.V("path", x.path), goerr.V("cause", err.Error()))
	}

	if err := toml.Unmarshal(data, &profile); err != nil {
		return profile, goerr.Wrap(ErrInvalidProfile, "failed to parse profile",
			goerr.V("path", x.path), goerr.V("cause", err.Error()))
	}

	if err := profile.Validate(); err != nil {
		return profile, err
	}

	return profile, nil
}

// Validate checks the profile invariants
func (x *Profile) Validate() error {
	if x.Upload.MaxSize <= 0 {
		return goerr.Wrap(ErrInvalidProfile, "upload max_size must be positive",
			goerr.V("max_size", x.Upload.MaxSize))
	}
	return nil
}
