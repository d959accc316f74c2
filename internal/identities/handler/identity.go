package handler

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"akoben/internal/identities/service"
	httputil "akoben/pkg/http"
	"akoben/pkg/logger"
	"akoben/pkg/otp"
)

// OTPSender is the part of the OTP service the handler needs.
type OTPSender interface {
	Send(ctx context.Context, phone string) error
	Verify(ctx context.Context, phone string, code string) (bool, error)
}

type IdentityHandler struct {
	service service.IdentityService
	otp     OTPSender
	log     *logger.Logger
}

func NewIdentityHandler(service service.IdentityService, otp OTPSender, log *logger.Logger) *IdentityHandler {
	return &IdentityHandler{
		service: service,
		otp:     otp,
		log:     log,
	}
}

type sendOTPRequest struct {
	Phone string `json:"phone"`
}

type verifyOTPRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type verifyOTPResponse struct {
	Verified bool `json:"verified"`
}

func (h *IdentityHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, identity); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *IdentityHandler) SendOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req sendOTPRequest
	if err := httputil.DecodeStrict(r.Body, &req); err != nil {
		h.writeError(w, "SendOTP", err)
		return
	}

	if err := h.otp.Send(r.Context(), req.Phone); err != nil {
		h.writeError(w, "SendOTP", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *IdentityHandler) VerifyOTP(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req verifyOTPRequest
	if err := httputil.DecodeStrict(r.Body, &req); err != nil {
		h.writeError(w, "VerifyOTP", err)
		return
	}

	verified, err := h.otp.Verify(r.Context(), req.Phone, req.Code)
	if err != nil {
		h.writeError(w, "VerifyOTP", err)
		return
	}

	if err := httputil.WriteSuccess(w, verifyOTPResponse{Verified: verified}); err != nil {
		h.log.Error("failed to write success response", "handler", "VerifyOTP", "operation", "WriteSuccess", "error", err)
	}
}

func (h *IdentityHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *IdentityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/identities/:id", h.GetByID)
	router.POST("/api/v1/otp/send", h.SendOTP)
	router.POST("/api/v1/otp/verify", h.VerifyOTP)
}

var _ OTPSender = (*otp.Service)(nil)
