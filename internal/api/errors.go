package api

import (
	"alcyxob/marathon-tracker/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// respondWithServiceError maps a service error to its HTTP status.
func respondWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGated), errors.Is(err, service.ErrInvalidState):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserAlreadyExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrExportDisabled):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		fields := log.Fields{"path": c.Request.URL.Path}
		var storeErr *service.StoreError
		if errors.As(err, &storeErr) {
			fields["op"] = storeErr.Op
		}
		log.WithFields(fields).WithError(err).Error("request failed")
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
