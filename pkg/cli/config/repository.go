package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/seido-lab/asclepius/pkg/domain/interfaces"
	"github.com/seido-lab/asclepius/pkg/repository/firestore"
	"github.com/seido-lab/asclepius/pkg/repository/memory"
	"github.com/seido-lab/asclepius/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend    string
	projectID  string
	databaseID string
	collection string
}

// Flags returns CLI flags for repository configuration
func (x *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (firestore or memory)",
			Value:       "firestore",
			Sources:     cli.EnvVars("ASCLEPIUS_REPOSITORY_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Sources:     cli.EnvVars("ASCLEPIUS_FIRESTORE_PROJECT_ID"),
			Destination: &x.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("ASCLEPIUS_FIRESTORE_DATABASE_ID"),
			Destination: &x.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Firestore collection holding prediction records",
			Value:       "predictions",
			Sources:     cli.EnvVars("ASCLEPIUS_FIRESTORE_COLLECTION"),
			Destination: &x.collection,
		},
	}
}

// Configure initializes and returns a repository based on the configured
// backend. The caller is responsible for calling Close() on it.
func (x *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch x.backend {
	case "firestore":
		if x.projectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, x.projectID, x.databaseID,
			firestore.WithCollection(x.collection))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", x.projectID,
			"database_id", x.databaseID,
			"collection", x.collection,
		)
		return repo, nil

	case "memory":
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.New("invalid repository backend", goerr.V("backend", x.backend))
	}
}
