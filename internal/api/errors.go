package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/agenda/internal/collection"
	"github.com/yanizio/agenda/internal/coordinator"
	"github.com/yanizio/agenda/internal/store"
)

type errorResponse struct {
	Error  string             `json:"error"`
	Fields []store.FieldError `json:"fields,omitempty"`
}

// statusOf maps the store and coordinator taxonomy onto HTTP.
func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, coordinator.ErrSlotBusy),
		errors.Is(err, coordinator.ErrSaveInFlight),
		errors.Is(err, coordinator.ErrSlotClosed):
		return http.StatusConflict
	case errors.Is(err, store.ErrStoreUnavailable),
		errors.Is(err, collection.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	resp := errorResponse{Error: err.Error()}

	var ve *store.ValidationError
	if errors.As(err, &ve) {
		resp.Error = store.ErrValidation.Error()
		resp.Fields = ve.Fields
	}
	if status >= http.StatusInternalServerError {
		s.Log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		if status == http.StatusInternalServerError {
			resp.Error = http.StatusText(status)
		}
	}
	writeJSON(w, status, resp)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
