package handler

import (
	"net/http"

	"akoben/internal/bookings/service"
	httputil "akoben/pkg/http"
	"akoben/pkg/logger"
	"akoben/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// reservationResponse is the 200 body of a repeated reservation.
type reservationResponse struct {
	Data          *model.Booking `json:"data"`
	AlreadyBooked bool           `json:"already_booked"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ReservationRequest
	if err := httputil.DecodeStrict(r.Body, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	result, err := h.service.Reserve(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if result.AlreadyBooked {
		if err := httputil.WriteJSON(w, http.StatusOK, reservationResponse{Data: result.Booking, AlreadyBooked: true}); err != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", err)
		}
		return
	}

	if err := httputil.WriteCreated(w, result.Booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}
	status := model.BookingStatus(r.URL.Query().Get("status"))

	bookings, totalCount, err := h.service.GetAll(r.Context(), status, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.BookingUpdate
	if err := httputil.DecodeStrict(r.Body, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	booking, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) InitializePayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := h.service.InitializePayment(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "InitializePayment", err)
		return
	}

	if err := httputil.WriteCreated(w, session); err != nil {
		h.log.Error("failed to write created response", "handler", "InitializePayment", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) VerifyPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.VerifyAndApplyPayment(r.Context(), ps.ByName("reference"))
	if err != nil {
		h.writeError(w, "VerifyPayment", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "VerifyPayment", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.GetAll)
	router.GET("/api/v1/bookings/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/:id", h.Update)
	router.DELETE("/api/v1/bookings/:id", h.Delete)
	router.POST("/api/v1/bookings/:id/payments", h.InitializePayment)
	router.POST("/api/v1/payments/verify/:reference", h.VerifyPayment)
}
