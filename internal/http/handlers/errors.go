package handlers

import (
	"errors"
	"net/http"

	"seatbooking/internal/domain"
	"seatbooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string   `json:"error"`
	Code      string   `json:"code,omitempty"`
	Field     string   `json:"field,omitempty"`
	SeatIDs   []string `json:"seat_ids,omitempty"`
	BookingID string   `json:"booking_id,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, resp ErrorResponse) {
	if resp.Code == "" {
		resp.Code = http.StatusText(status)
	}
	resp.RequestID = middleware.GetRequestID(c)
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses. Transient and
// internal failures are logged and returned without detail.
func (h Handler) RespondDomainError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindValidation:
		var ve domain.ValidationError
		errors.As(err, &ve)
		respondError(c, http.StatusBadRequest, ErrorResponse{Error: ve.Error(), Code: string(kind), Field: ve.Field})
	case domain.KindNotFound:
		var nf domain.NotFoundError
		errors.As(err, &nf)
		respondError(c, http.StatusNotFound, ErrorResponse{Error: nf.Error(), Code: string(kind), SeatIDs: nf.SeatIDs})
	case domain.KindConflict:
		var ce domain.ConflictError
		errors.As(err, &ce)
		respondError(c, http.StatusConflict, ErrorResponse{Error: ce.Error(), Code: string(kind), SeatIDs: ce.SeatIDs})
	case domain.KindStateConflict:
		var se domain.StateConflictError
		errors.As(err, &se)
		respondError(c, http.StatusConflict, ErrorResponse{Error: se.Error(), Code: string(kind)})
	case domain.KindTransient:
		h.Logger.Warn().
			Str("module", "HTTP").
			Str("request_id", middleware.GetRequestID(c)).
			Err(err).
			Msg("transient failure")
		c.Header("Retry-After", "1")
		respondError(c, http.StatusServiceUnavailable, ErrorResponse{Error: "temporarily unavailable, retry", Code: string(kind)})
	default:
		var ie domain.InternalError
		errors.As(err, &ie)
		h.Logger.Error().
			Str("module", "HTTP").
			Str("request_id", middleware.GetRequestID(c)).
			Str("booking_id", ie.BookingID).
			Err(err).
			Msg("internal failure")
		respondError(c, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: string(domain.KindInternal), BookingID: ie.BookingID})
	}
}
