package httpserver

import (
	"net/http"
	"strings"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	customerCtxKey    = "customer"
	accessTokenCookie = "access_token"
)

// authenticate resolves the access token from the Authorization header or
// the access_token cookie and stores the customer on the request context.
func (a *api) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie(accessTokenCookie); err == nil {
				token = cookie
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "unauthorized"})
			return
		}
		customer, err := a.CustomerSvc.LookupByToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "unauthorized"})
			return
		}
		c.Set(customerCtxKey, customer)
		c.Next()
	}
}

func (a *api) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		customer := currentCustomer(c)
		if customer == nil || customer.Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "error", "message": "admin only"})
			return
		}
		c.Next()
	}
}

func (a *api) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		customer := currentCustomer(c)
		if customer == nil || customer.Role != domain.RoleUser {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "error", "message": "users only"})
			return
		}
		c.Next()
	}
}

// requireCartOwner only lets a customer operate on their own cart.
func (a *api) requireCartOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		customer := currentCustomer(c)
		if customer == nil || customer.CartID == "" || customer.CartID != c.Param("cid") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "error", "message": "not your cart"})
			return
		}
		c.Next()
	}
}

func currentCustomer(c *gin.Context) *domain.Customer {
	v, ok := c.Get(customerCtxKey)
	if !ok {
		return nil
	}
	customer, ok := v.(*domain.Customer)
	if !ok {
		return nil
	}
	return customer
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
