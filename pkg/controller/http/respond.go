package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/seido-lab/asclepius/pkg/utils/logging"
	"github.com/seido-lab/asclepius/pkg/utils/safe"
)

// response is the fixed JSON envelope of the API
type response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logging.From(ctx).Error("failed to marshal response", "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, data)
}

func respondSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	respondJSON(ctx, w, http.StatusOK, response{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func respondFail(ctx context.Context, w http.ResponseWriter, status int, message string) {
	respondJSON(ctx, w, status, response{
		Status:  "fail",
		Message: message,
	})
}
