package utils

import (
	"errors"
	"net/http"

	"customer-care-backend/models"

	"github.com/gin-gonic/gin"
)

func RespondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "message": message})
}

// RespondWithServiceError maps the typed errors raised by the services and
// stores onto HTTP statuses with a uniform envelope. Internal details are
// only echoed outside release mode.
func RespondWithServiceError(c *gin.Context, err error, fallback string) {
	var verr models.ValidationErrors
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"errors":  verr,
		})
		return
	}

	var conflict *models.ConflictError
	if errors.As(err, &conflict) {
		RespondWithError(c, http.StatusBadRequest, conflict.Message)
		return
	}

	if errors.Is(err, models.ErrReferenceNotFound) {
		RespondWithError(c, http.StatusNotFound, "Customer, service or employee not found")
		return
	}

	if errors.Is(err, models.ErrNotFound) {
		RespondWithError(c, http.StatusNotFound, err.Error())
		return
	}

	var storageErr *models.StorageError
	if errors.As(err, &storageErr) {
		RespondWithError(c, http.StatusInternalServerError, "Failed to store attachment")
		return
	}

	if gin.Mode() != gin.ReleaseMode {
		RespondWithError(c, http.StatusInternalServerError, fallback+": "+err.Error())
		return
	}
	RespondWithError(c, http.StatusInternalServerError, fallback)
}
