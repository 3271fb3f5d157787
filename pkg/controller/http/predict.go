package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/seido-lab/asclepius/pkg/domain/model"
	"github.com/seido-lab/asclepius/pkg/utils/errutil"
	"github.com/seido-lab/asclepius/pkg/utils/safe"
)

// uploadField is the multipart form field carrying the image
const uploadField = "image"

// User-facing messages. Validation failures are specific; everything after
// validation collapses into one generic message and the cause stays in the
// logs.
const (
	msgNoImage        = "no image uploaded"
	msgNotAnImage     = "uploaded file is not an image"
	msgTooLarge       = "payload exceeds maximum allowed size"
	msgPredictFailed  = "error occurred while predicting"
	msgHistoryFailed  = "error occurred while fetching histories"
	msgPredictSuccess = "model is predicted successfully"
)

type predictionData struct {
	ID         string    `json:"id"`
	Result     string    `json:"result"`
	Suggestion string    `json:"suggestion"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toPredictionData(p *model.Prediction) predictionData {
	return predictionData{
		ID:         p.ID.String(),
		Result:     p.Result.String(),
		Suggestion: p.Suggestion,
		CreatedAt:  p.CreatedAt,
	}
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// The body cap backstops the whole request. With the explicit file
	// size check on, the cap is relaxed so multipart framing overhead
	// cannot reject a file that is itself within the limit; header.Size
	// then decides the 413.
	bodyLimit := s.maxUploadSize
	if s.explicitCheck && bodyLimit < DefaultMaxUploadSize {
		bodyLimit = DefaultMaxUploadSize
	}
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondFail(ctx, w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		respondFail(ctx, w, http.StatusBadRequest, msgNoImage)
		return
	}
	defer safe.Close(ctx, file)

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		respondFail(ctx, w, http.StatusBadRequest, msgNotAnImage)
		return
	}

	if s.explicitCheck && header.Size > s.maxUploadSize {
		respondFail(ctx, w, http.StatusRequestEntityTooLarge, msgTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		errutil.Handle(ctx, err, "failed to read upload")
		respondFail(ctx, w, http.StatusBadRequest, msgPredictFailed)
		return
	}

	p, err := s.uc.Predict(ctx, data)
	if err != nil {
		errutil.Handle(ctx, err, "prediction pipeline failed")
		respondFail(ctx, w, http.StatusBadRequest, msgPredictFailed)
		return
	}

	respondSuccess(ctx, w, msgPredictSuccess, toPredictionData(p))
}

type historyEntry struct {
	ID      string         `json:"id"`
	History predictionData `json:"history"`
}

func (s *Server) handleHistories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := s.uc.ListHistories(ctx)
	if err != nil {
		errutil.Handle(ctx, err, "failed to fetch histories")
		respondFail(ctx, w, http.StatusBadRequest, msgHistoryFailed)
		return
	}

	entries := make([]historyEntry, len(records))
	for i, p := range records {
		entries[i] = historyEntry{
			ID:      p.ID.String(),
			History: toPredictionData(p),
		}
	}

	respondSuccess(ctx, w, "", entries)
}
