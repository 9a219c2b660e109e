package httpserver

import (
	"net/http"

	customersvc "storefront/internal/service/customer"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *api) register(c *gin.Context) {
	var in customersvc.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request body"})
		return
	}
	customer, err := a.CustomerSvc.Signup(c.Request.Context(), in)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "payload": customer})
}

func (a *api) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "email and password are required"})
		return
	}
	customer, access, refresh, err := a.CustomerSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		a.respondError(c, err)
		return
	}

	c.SetCookie(accessTokenCookie, access, a.CustomerSvc.AccessTTLSeconds(), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"payload":      customer,
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

func (a *api) logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		if cookie, err := c.Cookie(accessTokenCookie); err == nil {
			token = cookie
		}
	}
	if token != "" {
		if err := a.CustomerSvc.Logout(c.Request.Context(), token); err != nil {
			a.respondError(c, err)
			return
		}
	}
	c.SetCookie(accessTokenCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (a *api) current(c *gin.Context) {
	customer := currentCustomer(c)
	c.JSON(http.StatusOK, gin.H{"status": "success", "payload": customer})
}
