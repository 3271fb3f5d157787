package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/seido-lab/asclepius/pkg/domain/interfaces"
)

// ErrNotFound is returned when the requested document does not exist
var ErrNotFound = goerr.New("record not found")

type Firestore struct {
	client     *firestore.Client
	prediction *predictionRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollection overrides the predictions collection name
func WithCollection(name string) Option {
	return func(f *Firestore) {
		f.prediction.collection = name
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:     client,
		prediction: newPredictionRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Prediction() interfaces.PredictionRepository {
	return f.prediction
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
