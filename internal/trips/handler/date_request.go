package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"akoben/internal/trips/service"
	httputil "akoben/pkg/http"
	"akoben/pkg/logger"
	"akoben/pkg/model"
)

type DateRequestHandler struct {
	service service.DateRequestService
	log     *logger.Logger
}

func NewDateRequestHandler(service service.DateRequestService, log *logger.Logger) *DateRequestHandler {
	return &DateRequestHandler{
		service: service,
		log:     log,
	}
}

func (h *DateRequestHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var input model.DateRequestInput
	if err := httputil.DecodeStrict(r.Body, &input); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	req, err := h.service.Create(r.Context(), ps.ByName("id"), &input)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, req); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *DateRequestHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	req, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, req); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// GetAll lists every request, or only those of one trip when mounted under
// /trips/:id.
func (h *DateRequestHandler) GetAll(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	requests, totalCount, err := h.service.GetAll(r.Context(), ps.ByName("id"), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, requests, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *DateRequestHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *DateRequestHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/trips/:id/date-requests", h.Create)
	router.GET("/api/v1/trips/:id/date-requests", h.GetAll)
	router.GET("/api/v1/date-requests", h.GetAll)
	router.GET("/api/v1/date-requests/:id", h.GetByID)
}
