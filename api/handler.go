// Package api exposes the engine read models and commands over HTTP. It is
// the boundary the presentation layer talks to; no rendering happens here.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pitops/minedispatch/core/dispatch"
	"github.com/pitops/minedispatch/core/kpi"
	"github.com/pitops/minedispatch/core/logger"
	"github.com/pitops/minedispatch/core/model"
)

type manualAssignRequest struct {
	LoaderID        string   `json:"loader_id"`
	HaulerIDs       []string `json:"hauler_ids"`
	Material        string   `json:"material"`
	SourceZone      string   `json:"source_zone,omitempty"`
	DestinationZone string   `json:"destination_zone,omitempty"`
}

type materialRequest struct {
	Material string `json:"material"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter builds the HTTP API for the dispatch manager.
func NewRouter(m *dispatch.Manager, log logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/api/fleet", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, m.Fleet())
	})
	r.Get("/api/assignments", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, m.Assignments())
	})
	r.Get("/api/suggestions", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, m.Suggestions())
	})
	r.Get("/api/alerts", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, m.ActiveAlerts())
	})
	r.Get("/api/alerts/history", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, m.AlertHistory())
	})
	r.Get("/api/kpi", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, kpi.Compute(m.Fleet(), m.Assignments()))
	})
	r.Get("/api/materials", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, model.Routes())
	})

	r.Post("/api/assignments/auto", func(w http.ResponseWriter, _ *http.Request) {
		created := m.AutoAssign()
		log.Infof("auto dispatch round committed %d assignment(s)", len(created))
		writeJSON(w, http.StatusOK, created)
	})
	r.Post("/api/assignments", func(w http.ResponseWriter, req *http.Request) {
		var body manualAssignRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		created, err := m.ManualAssign(body.LoaderID, body.HaulerIDs, model.MaterialType(body.Material), body.SourceZone, body.DestinationZone)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	})
	r.Delete("/api/assignments/{id}", func(w http.ResponseWriter, req *http.Request) {
		// removal is idempotent: unknown ids succeed with no effect
		if err := m.RemoveAssignment(chi.URLParam(req, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	r.Put("/api/loaders/{id}/material", func(w http.ResponseWriter, req *http.Request) {
		var body materialRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if err := m.UpdateMaterial(chi.URLParam(req, "id"), model.MaterialType(body.Material)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/api/equipment/{id}/breakdown", func(w http.ResponseWriter, req *http.Request) {
		al, err := m.ReportBreakdown(chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, al)
	})
	r.Post("/api/alerts/{id}/ack", func(w http.ResponseWriter, req *http.Request) {
		al, err := m.Acknowledge(chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, al)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps engine error kinds onto HTTP statuses, keeping the
// human-readable reason in the body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dispatch.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, dispatch.ErrValidationFailed):
		status = http.StatusBadRequest
	case errors.Is(err, dispatch.ErrEquipmentUnavailable), errors.Is(err, dispatch.ErrCapacityMismatch):
		status = http.StatusConflict
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
