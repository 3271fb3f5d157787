package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/seido-lab/asclepius/pkg/domain/model"
	"github.com/seido-lab/asclepius/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultCollection = "predictions"

// predictionDoc is the Firestore document representation of model.Prediction
type predictionDoc struct {
	ID         string    `firestore:"ID"`
	Result     string    `firestore:"Result"`
	Suggestion string    `firestore:"Suggestion"`
	CreatedAt  time.Time `firestore:"CreatedAt"`
}

func toPredictionDoc(p *model.Prediction) *predictionDoc {
	return &predictionDoc{
		ID:         p.ID.String(),
		Result:     p.Result.String(),
		Suggestion: p.Suggestion,
		CreatedAt:  p.CreatedAt,
	}
}

func fromPredictionDoc(d *predictionDoc) *model.Prediction {
	return &model.Prediction{
		ID:         types.PredictionID(d.ID),
		Result:     types.ResultLabel(d.Result),
		Suggestion: d.Suggestion,
		CreatedAt:  d.CreatedAt,
	}
}

func docToPrediction(doc *firestore.DocumentSnapshot) (*model.Prediction, error) {
	var d predictionDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return fromPredictionDoc(&d), nil
}

type predictionRepository struct {
	client     *firestore.Client
	collection string
}

func newPredictionRepository(client *firestore.Client) *predictionRepository {
	return &predictionRepository{
		client:     client,
		collection: defaultCollection,
	}
}

func (r *predictionRepository) predictions() *firestore.CollectionRef {
	return r.client.Collection(r.collection)
}

// Put upserts the record keyed by its ID. Set replaces the whole document,
// which makes a retried write converge to the same state.
func (r *predictionRepository) Put(ctx context.Context, p *model.Prediction) error {
	if err := p.Validate(); err != nil {
		return goerr.Wrap(err, "invalid prediction record")
	}

	docRef := r.predictions().Doc(p.ID.String())
	if _, err := docRef.Set(ctx, toPredictionDoc(p)); err != nil {
		return goerr.Wrap(err, "failed to put prediction", goerr.V("id", p.ID))
	}

	return nil
}

func (r *predictionRepository) Get(ctx context.Context, id types.PredictionID) (*model.Prediction, error) {
	doc, err := r.predictions().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "prediction not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get prediction", goerr.V("id", id))
	}

	p, err := docToPrediction(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal prediction", goerr.V("id", id))
	}

	return p, nil
}

func (r *predictionRepository) List(ctx context.Context) ([]*model.Prediction, error) {
	iter := r.predictions().OrderBy("CreatedAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var results []*model.Prediction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate predictions")
		}

		p, err := docToPrediction(doc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal prediction", goerr.V("doc", doc.Ref.ID))
		}
		results = append(results, p)
	}

	return results, nil
}
