package httpserver

import (
	"net/http"

	productsvc "storefront/internal/service/product"

	"github.com/gin-gonic/gin"
)

func (a *api) listProducts(c *gin.Context) {
	in := productsvc.ListInput{
		Limit: productsvc.ParsePositive(c.Query("limit"), 10),
		Page:  productsvc.ParsePositive(c.Query("page"), 1),
		Sort:  productsvc.ParseSort(c.Query("sort")),
		Query: c.Query("query"),
	}
	result, err := a.ProductSvc.List(c.Request.Context(), in)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"payload":    result.Products,
		"pagination": result.Pagination,
	})
}

func (a *api) getProduct(c *gin.Context) {
	product, err := a.ProductSvc.Get(c.Request.Context(), c.Param("pid"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (a *api) createProduct(c *gin.Context) {
	var in productsvc.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request body"})
		return
	}
	product, err := a.ProductSvc.Create(c.Request.Context(), in)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (a *api) updateProduct(c *gin.Context) {
	var in productsvc.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request body"})
		return
	}
	product, err := a.ProductSvc.Update(c.Request.Context(), c.Param("pid"), in)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (a *api) deleteProduct(c *gin.Context) {
	existed, err := a.ProductSvc.Delete(c.Request.Context(), c.Param("pid"))
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
