package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/feed-system/socialconnect/internal/services"
	"github.com/feed-system/socialconnect/pkg/logger"
	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses. Anything unrecognised
// is logged and reported as a generic 500.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": validation.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrInvalidOperation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

// pageParam reads ?page=, defaulting to 1 for missing or malformed values.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
