package transport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ds124wfegd/showcaller/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusFor maps domain errors onto HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrShowNotFound),
		errors.Is(err, entity.ErrCallNotFound),
		errors.Is(err, entity.ErrGroupNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidInput),
		errors.Is(err, entity.ErrInvalidMinutes),
		errors.Is(err, entity.ErrMalformedGroupIDs),
		errors.Is(err, entity.ErrUnknownGroup):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrDefaultGroupLocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " id"})
		return 0, false
	}
	return id, true
}
