package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"akoben/internal/trips/service"
	httputil "akoben/pkg/http"
	"akoben/pkg/logger"
	"akoben/pkg/model"
)

type TripHandler struct {
	service service.TripService
	log     *logger.Logger
}

func NewTripHandler(service service.TripService, log *logger.Logger) *TripHandler {
	return &TripHandler{
		service: service,
		log:     log,
	}
}

func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var trip model.Trip
	if err := httputil.DecodeStrict(r.Body, &trip); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), &trip); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, trip); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *TripHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	trip, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, trip); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TripHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	trips, totalCount, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, trips, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.TripUpdate
	if err := httputil.DecodeStrict(r.Body, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *TripHandler) AddOccurrence(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var input model.OccurrenceInput
	if err := httputil.DecodeStrict(r.Body, &input); err != nil {
		h.writeError(w, "AddOccurrence", err)
		return
	}

	occ, err := h.service.AddOccurrence(r.Context(), ps.ByName("id"), &input)
	if err != nil {
		h.writeError(w, "AddOccurrence", err)
		return
	}

	if err := httputil.WriteCreated(w, occ); err != nil {
		h.log.Error("failed to write created response", "handler", "AddOccurrence", "operation", "WriteCreated", "error", err)
	}
}

func (h *TripHandler) RemoveOccurrence(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.RemoveOccurrence(r.Context(), ps.ByName("id"), ps.ByName("occurrenceId")); err != nil {
		h.writeError(w, "RemoveOccurrence", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *TripHandler) DescribeOccurrence(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	availability, err := h.service.DescribeOccurrence(r.Context(), ps.ByName("id"), ps.ByName("occurrenceId"))
	if err != nil {
		h.writeError(w, "DescribeOccurrence", err)
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "DescribeOccurrence", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TripHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *TripHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/trips", h.Create)
	router.GET("/api/v1/trips", h.GetAll)
	router.GET("/api/v1/trips/:id", h.GetByID)
	router.PATCH("/api/v1/trips/:id", h.Update)
	router.DELETE("/api/v1/trips/:id", h.Delete)
	router.POST("/api/v1/trips/:id/occurrences", h.AddOccurrence)
	router.DELETE("/api/v1/trips/:id/occurrences/:occurrenceId", h.RemoveOccurrence)
	router.GET("/api/v1/trips/:id/occurrences/:occurrenceId/availability", h.DescribeOccurrence)
}
