package handlers

import (
	"net/http"

	"seatbooking/internal/domain"

	"github.com/gin-gonic/gin"
)

// BindJSONOrError ensures body is present and parsable. Failures use the
// same ErrorResponse shape as domain errors.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, ErrorResponse{
			Error: "empty body",
			Code:  string(domain.KindValidation),
			Field: "body",
		})
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, ErrorResponse{
			Error: "invalid payload: " + err.Error(),
			Code:  string(domain.KindValidation),
			Field: "body",
		})
		return false
	}
	return true
}
