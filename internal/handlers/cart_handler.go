package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plantsforlife/storefront/internal/auth"
	"github.com/plantsforlife/storefront/internal/cart"
	"github.com/plantsforlife/storefront/internal/validation"
)

// cartState is the response for every cart mutation: the full cart plus
// the derived totals, recomputed on each call, and whether the last
// mutation was clamped to stock.
func cartState(ct *cart.Cart, clamped bool) gin.H {
	return gin.H{
		"items":     ct.Items(),
		"total":     ct.Total(),
		"itemCount": ct.ItemCount(),
		"clamped":   clamped,
	}
}

func (d *deps) getCart(c *gin.Context) {
	id, _ := auth.FromContext(c)
	c.JSON(http.StatusOK, cartState(d.carts.For(id.UserID), false))
}

func (d *deps) addCartItem(c *gin.Context) {
	id, _ := auth.FromContext(c)
	var req validation.CartAddRequest
	if err := validation.BindAndValidate(c, &req, d.validate); err != nil {
		return
	}
	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}

	product, err := d.catalog.Get(c.Request.Context(), req.ProductID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_error", "detail": err.Error()})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
		return
	}

	ct := d.carts.For(id.UserID)
	clamped := ct.Add(*product, qty)
	c.JSON(http.StatusOK, cartState(ct, clamped))
}

func (d *deps) setCartItemQuantity(c *gin.Context) {
	id, _ := auth.FromContext(c)
	var req validation.CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body", "msg": err.Error()})
		return
	}
	ct := d.carts.For(id.UserID)
	clamped := ct.SetQuantity(c.Param("id"), req.Quantity)
	c.JSON(http.StatusOK, cartState(ct, clamped))
}

func (d *deps) removeCartItem(c *gin.Context) {
	id, _ := auth.FromContext(c)
	ct := d.carts.For(id.UserID)
	ct.Remove(c.Param("id"))
	c.JSON(http.StatusOK, cartState(ct, false))
}

func (d *deps) clearCart(c *gin.Context) {
	id, _ := auth.FromContext(c)
	ct := d.carts.For(id.UserID)
	ct.Clear()
	c.JSON(http.StatusOK, cartState(ct, false))
}
