package handlers

import (
	"errors"
	"net/http"

	"github.com/crestline-ir/internal/services"
	"github.com/crestline-ir/internal/store"
	"github.com/gin-gonic/gin"
)

// respondError maps the engine's error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a 500 with a generic message; the detail stays in
// the server log.
func respondError(c *gin.Context, err error) {
	var v *services.ValidationError
	var nf *store.NotFoundError
	var conflict *store.ConflictError

	switch {
	case errors.As(err, &v):
		c.JSON(http.StatusBadRequest, gin.H{"error": v.Reason})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
