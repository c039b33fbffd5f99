package handlers

import (
	"context"
	"net/http"
	"time"

	"seatbooking/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "seat booking service running"})
}

// DBCheck pings the pool and counts vehicles.
func (h Handler) DBCheck(c *gin.Context) {
	if h.DB == nil {
		respondError(c, http.StatusServiceUnavailable, ErrorResponse{Error: "database not connected", Code: string(domain.KindTransient)})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	var count int
	if err := h.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM vehicles").Scan(&count); err != nil {
		h.Logger.Error().Str("module", "HTTP").Err(err).Msg("db check failed")
		respondError(c, http.StatusServiceUnavailable, ErrorResponse{Error: "database query failed", Code: string(domain.KindTransient)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection OK", "vehicles_in_db": count})
}

// Routes lists the routes registered on r.
func Routes(r *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		routes := r.Routes()
		out := make([]gin.H, 0, len(routes))
		for _, rt := range routes {
			out = append(out, gin.H{
				"method":  rt.Method,
				"path":    rt.Path,
				"handler": rt.Handler,
			})
		}
		c.JSON(http.StatusOK, gin.H{"routes": out})
	}
}
