package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelia/catalog-service/pkg/apperrors"
)

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Error maps the error taxonomy onto HTTP statuses: validation failures carry
// the field list, preconditions are 400, missing rows 404, everything else
// (including transaction failures) is a generic 500 without partial-state
// leakage.
func Error(c *gin.Context, err error) {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
		return
	}

	var pe *apperrors.PreconditionError
	if errors.As(err, &pe) {
		c.JSON(http.StatusBadRequest, gin.H{"error": pe.Message})
		return
	}

	if apperrors.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
