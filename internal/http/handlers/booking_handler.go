package handlers

import (
	"net/http"

	"seatbooking/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// POST /api/bookings
func (h Handler) CreateBooking(c *gin.Context) {
	var req models.BookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.Bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GET /api/bookings/:id
func (h Handler) GetBooking(c *gin.Context) {
	b, err := h.Bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
