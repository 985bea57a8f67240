package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"outage-pulse/pkg/analytics"
	"outage-pulse/pkg/outage"
	"outage-pulse/pkg/types"
)

// Handlers contains the HTTP request handlers for the outage API.
type Handlers struct {
	logger  *logrus.Logger
	manager *outage.Manager
	engine  *analytics.Engine
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(logger *logrus.Logger, manager *outage.Manager, engine *analytics.Engine) *Handlers {
	return &Handlers{
		logger:  logger,
		manager: manager,
		engine:  engine,
	}
}

func (h *Handlers) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.WithField("error", err).Error("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		h.logger.WithField("error", err).Error("Failed to write JSON response")
	}
}

func (h *Handlers) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

// mapError translates domain errors into HTTP responses. Anything unrecognized
// is logged and reported as an opaque 500.
func (h *Handlers) mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrMissingFields):
		h.respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrInvalidID):
		h.respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrNotFound):
		h.respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrAlreadyResolved):
		h.respondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.WithField("error", err).Error("Request failed")
		h.respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func outageIDFromRequest(r *http.Request) (uint, error) {
	raw := mux.Vars(r)["outageId"]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, types.ErrInvalidID
	}
	return uint(id), nil
}

// HealthJSON reports process liveness.
func (h *Handlers) HealthJSON(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReportOutageJSON handles POST /api/outages. A report that matches an ongoing
// outage confirms it and returns 200; otherwise a new outage is created and
// returned with 201.
func (h *Handlers) ReportOutageJSON(w http.ResponseWriter, r *http.Request) {
	var req types.ReportOutageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, created, err := h.manager.ReportOutage(&req)
	if err != nil {
		h.mapError(w, err)
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	h.respondWithJSON(w, code, types.ReportOutageResponse{
		Outage:    result,
		Confirmed: !created,
	})
}

// ListOutagesJSON handles GET /api/outages, returning all outages newest first.
func (h *Handlers) ListOutagesJSON(w http.ResponseWriter, r *http.Request) {
	outages, err := h.manager.ListOutages()
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, outages)
}

// RestoreOutageJSON handles PATCH /api/outages/{outageId}/restore.
func (h *Handlers) RestoreOutageJSON(w http.ResponseWriter, r *http.Request) {
	id, err := outageIDFromRequest(r)
	if err != nil {
		h.mapError(w, err)
		return
	}

	result, err := h.manager.RestoreOutage(id)
	if err != nil {
		h.mapError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, result)
}

// DeleteOutageJSON handles DELETE /api/outages/{outageId}. The admin auth
// middleware runs before this, so a bad secret yields 403 even when the ID is
// malformed.
func (h *Handlers) DeleteOutageJSON(w http.ResponseWriter, r *http.Request) {
	id, err := outageIDFromRequest(r)
	if err != nil {
		h.mapError(w, err)
		return
	}

	if err := h.manager.DeleteOutage(id); err != nil {
		h.mapError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetStatsJSON handles GET /api/analytics/stats.
func (h *Handlers) GetStatsJSON(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.ComputeStats()
	if err != nil {
		h.mapError(w, err)
		return
	}
	if report == nil {
		h.respondWithJSON(w, http.StatusOK, struct{}{})
		return
	}
	h.respondWithJSON(w, http.StatusOK, report)
}

// GetInsightsJSON handles GET /api/analytics/insights.
func (h *Handlers) GetInsightsJSON(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.ComputeInsights()
	if err != nil {
		h.mapError(w, err)
		return
	}
	if report == nil {
		h.respondWithJSON(w, http.StatusOK, struct{}{})
		return
	}
	h.respondWithJSON(w, http.StatusOK, report)
}

// GetImpactJSON handles GET /api/analytics/impact.
func (h *Handlers) GetImpactJSON(w http.ResponseWriter, r *http.Request) {
	report, err := h.engine.ComputeImpact()
	if err != nil {
		h.mapError(w, err)
		return
	}
	if report == nil {
		h.respondWithJSON(w, http.StatusOK, struct{}{})
		return
	}
	h.respondWithJSON(w, http.StatusOK, report)
}
