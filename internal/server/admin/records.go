// Package admin serves operator endpoints on the admin listener next to
// metrics and health.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/logging"
	"github.com/dmitrijs2005/offsync/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// RecordReader looks up the authoritative copy of a record.
type RecordReader interface {
	GetRecord(ctx context.Context, id string) (*models.Record, error)
}

type recordResponse struct {
	ID        string            `json:"id"`
	Fields    map[string]string `json:"fields"`
	UpdatedAt *time.Time        `json:"updated_at,omitempty"`
}

// NewRouter adds GET /records/{id} in front of base, which keeps serving
// /metrics and /healthz.
func NewRouter(base http.Handler, records RecordReader, logger logging.Logger) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", base)
	r.Handle("/healthz", base)
	r.Get("/records/{id}", recordHandler(records, logger))
	return r
}

func recordHandler(records RecordReader, logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		rec, err := records.GetRecord(req.Context(), chi.URLParam(req, "id"))
		switch {
		case err == nil:
		case errors.Is(err, common.ErrorValidation):
			http.Error(w, "invalid record id", http.StatusBadRequest)
			return
		case errors.Is(err, common.ErrorNotFound):
			http.Error(w, "record not found", http.StatusNotFound)
			return
		default:
			logger.Error(req.Context(), "record lookup failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := recordResponse{ID: rec.ID, Fields: rec.Fields}
		if !rec.UpdatedAt.IsZero() {
			t := rec.UpdatedAt.UTC()
			resp.UpdatedAt = &t
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Warn(req.Context(), "write record response", "error", err)
		}
	}
}
