package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/plantsforlife/storefront/internal/catalog"
	"github.com/plantsforlife/storefront/internal/orders"
	"github.com/plantsforlife/storefront/internal/validation"
)

func (d *deps) listProducts(c *gin.Context) {
	products, err := d.catalog.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_error", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (d *deps) createProduct(c *gin.Context) {
	var req validation.ProductRequest
	if err := validation.BindAndValidate(c, &req, d.validate); err != nil {
		return
	}
	p, err := d.catalog.Create(c.Request.Context(), productFromRequest(req))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_error", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (d *deps) updateProduct(c *gin.Context) {
	var req validation.ProductRequest
	if err := validation.BindAndValidate(c, &req, d.validate); err != nil {
		return
	}
	err := d.catalog.Update(c.Request.Context(), c.Param("id"), productFromRequest(req))
	if err == catalog.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_error", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (d *deps) deleteProduct(c *gin.Context) {
	if err := d.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_error", "detail": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func productFromRequest(req validation.ProductRequest) catalog.Product {
	return catalog.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Price:       req.Price,
		Stock:       *req.Stock,
	}
}

// orderView decorates an order with its derived display bucket.
type orderView struct {
	orders.Order
	Bucket string `json:"bucket"`
}

func viewOrders(list []orders.Order) []orderView {
	out := make([]orderView, 0, len(list))
	for _, o := range list {
		out = append(out, orderView{Order: o, Bucket: orders.Bucket(o.Status)})
	}
	return out
}
