package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	customersvc "storefront/internal/service/customer"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors to HTTP statuses. Validation problems and
// missing entities are user errors; everything unclassified is a 500.
func (a *api) respondError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var stockErr *domain.StockError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": validationErr.Error()})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "cart is empty"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"status": "error", "message": "already exists"})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{"status": "error", "message": stockErr.Error()})
	case errors.Is(err, customersvc.ErrInvalidCredentials), errors.Is(err, customersvc.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "unauthorized"})
	default:
		a.logger.Printf("http: unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "internal error"})
	}
}
