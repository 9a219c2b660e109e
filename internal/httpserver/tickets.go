package httpserver

import (
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

func (a *api) listOwnTickets(c *gin.Context) {
	customer := currentCustomer(c)
	views, err := a.TicketSvc.ListByPurchaser(c.Request.Context(), customer.Email)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "payload": views})
}

func (a *api) getTicket(c *gin.Context) {
	view, err := a.TicketSvc.Get(c.Request.Context(), c.Param("tid"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	if !a.mayReadTicket(c, view.Purchaser) {
		return
	}
	c.JSON(http.StatusOK, view)
}

func (a *api) getTicketByCode(c *gin.Context) {
	view, err := a.TicketSvc.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	if !a.mayReadTicket(c, view.Purchaser) {
		return
	}
	c.JSON(http.StatusOK, view)
}

func (a *api) deleteTicket(c *gin.Context) {
	existed, err := a.TicketSvc.Delete(c.Request.Context(), c.Param("tid"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	if !existed {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// mayReadTicket lets a customer read their own tickets and an admin read
// any. It writes the response itself when access is denied.
func (a *api) mayReadTicket(c *gin.Context, purchaser string) bool {
	customer := currentCustomer(c)
	if customer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "unauthorized"})
		return false
	}
	if customer.Role == domain.RoleAdmin || customer.Email == purchaser {
		return true
	}
	c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "forbidden"})
	return false
}
