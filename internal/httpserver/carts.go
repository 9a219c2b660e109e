package httpserver

import (
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

func (a *api) createCart(c *gin.Context) {
	cart, err := a.CartSvc.Create(c.Request.Context())
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}

func (a *api) getCart(c *gin.Context) {
	cart, err := a.CartSvc.GetPopulated(c.Request.Context(), c.Param("cid"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type addLineRequest struct {
	Quantity *int `json:"quantity"`
}

func (a *api) addCartLine(c *gin.Context) {
	quantity := 1
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.Quantity != nil {
		quantity = *req.Quantity
	}
	cart, err := a.CartSvc.AddLine(c.Request.Context(), c.Param("cid"), c.Param("pid"), quantity)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (a *api) setCartLineQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "quantity must be a positive integer"})
		return
	}
	cart, err := a.CartSvc.SetLineQuantity(c.Request.Context(), c.Param("cid"), c.Param("pid"), *req.Quantity)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (a *api) removeCartLine(c *gin.Context) {
	cart, err := a.CartSvc.RemoveLine(c.Request.Context(), c.Param("cid"), c.Param("pid"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

type replaceLinesRequest struct {
	Products []struct {
		Product  string `json:"product"`
		Quantity int    `json:"quantity"`
	} `json:"products" binding:"required"`
}

func (a *api) replaceCartLines(c *gin.Context) {
	var req replaceLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "products must be an array"})
		return
	}
	lines := make([]domain.CartLine, 0, len(req.Products))
	for _, p := range req.Products {
		lines = append(lines, domain.CartLine{ProductID: p.Product, Quantity: p.Quantity})
	}
	cart, err := a.CartSvc.ReplaceLines(c.Request.Context(), c.Param("cid"), lines)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (a *api) clearCart(c *gin.Context) {
	cart, err := a.CartSvc.Clear(c.Request.Context(), c.Param("cid"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (a *api) purchaseCart(c *gin.Context) {
	customer := currentCustomer(c)
	result, err := a.CheckoutSvc.Purchase(c.Request.Context(), c.Param("cid"), customer.Email)
	if err != nil {
		a.respondError(c, err)
		return
	}

	if result.Ticket == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":               "error",
			"message":              "no products with sufficient stock to complete the purchase",
			"productsNotPurchased": result.Unpurchased,
		})
		return
	}

	if a.Mailer != nil {
		ticket := *result.Ticket
		go func() {
			if err := a.Mailer.SendTicket(ticket); err != nil {
				a.logger.Printf("http: purchase confirmation email for ticket %s failed: %v", ticket.Code, err)
			}
		}()
	}

	message := "purchase completed"
	if !result.FullyPurchased {
		message = "partial purchase completed, some products were out of stock"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":               "success",
		"message":              message,
		"ticket":               result.Ticket,
		"productsNotPurchased": result.Unpurchased,
	})
}
