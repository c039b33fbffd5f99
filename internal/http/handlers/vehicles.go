package handlers

import (
	"net/http"
	"strings"
	"time"

	"seatbooking/internal/domain"
	"seatbooking/internal/domain/models"
	"seatbooking/internal/http/middleware"
	"seatbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

type createVehicleRequest struct {
	Name          string `json:"name"`
	Route         string `json:"route"`
	DepartureTime string `json:"departure_time"`
	TotalSeats    int    `json:"total_seats"`
}

// POST /api/vehicles
func (h Handler) CreateVehicle(c *gin.Context) {
	var req createVehicleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	departure, err := time.Parse(time.RFC3339, strings.TrimSpace(req.DepartureTime))
	if err != nil {
		h.RespondDomainError(c, domain.ValidationError{
			Field: "departure_time",
			Msg:   "must be an RFC3339 timestamp",
			Err:   err,
		})
		return
	}

	v, err := h.Inventory.CreateVehicle(c.Request.Context(), models.VehicleInput{
		Name:          req.Name,
		Route:         req.Route,
		DepartureTime: departure,
		TotalSeats:    req.TotalSeats,
	})
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	if rc, ok := middleware.GetRequestContext(c); ok {
		utils.LogEvent(h.Logger, middleware.GetRequestID(c), "vehicles", "create", "vehicle "+v.ID+" created by user "+rc.UserID)
	}
	c.JSON(http.StatusCreated, v)
}

// GET /api/vehicles
func (h Handler) ListVehicles(c *gin.Context) {
	list, err := h.Inventory.ListVehicles(c.Request.Context())
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/vehicles/:id
func (h Handler) GetVehicle(c *gin.Context) {
	v, err := h.Inventory.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// GET /api/vehicles/:id/seats
func (h Handler) ListSeats(c *gin.Context) {
	seats, err := h.Inventory.ListSeats(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, seats)
}
