package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/plantsforlife/storefront/internal/auth"
	intaws "github.com/plantsforlife/storefront/internal/aws"
	"github.com/plantsforlife/storefront/internal/live"
	"github.com/plantsforlife/storefront/internal/orders"
	"github.com/plantsforlife/storefront/internal/validation"
)

// placeOrder converts the caller's session cart into a persisted order.
// The order document write and every line's stock reservation commit in a
// single transaction: on any failure no order exists and the cart is kept,
// so the request is safe to retry.
func (d *deps) placeOrder(c *gin.Context) {
	ctx := c.Request.Context()
	id, _ := auth.FromContext(c)

	var req validation.CheckoutRequest
	if err := validation.BindAndValidate(c, &req, d.validate); err != nil {
		return
	}

	ct := d.carts.For(id.UserID)
	lines := ct.Items()
	if len(lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty_cart"})
		return
	}

	total := ct.Total()
	// guard against the shopper confirming a stale total (price edited
	// between render and checkout); compared in cents to dodge float noise
	if req.ExpectedTotal > 0 && toCents(req.ExpectedTotal) != toCents(total) {
		c.JSON(http.StatusConflict, gin.H{"error": "total_mismatch", "total": total})
		return
	}

	now := time.Now().UTC()
	order := orders.Order{
		OrderID:     uuid.NewString(),
		OrderNumber: orders.NewOrderNumber(now),
		UserID:      id.UserID,
		CustomerInfo: orders.CustomerInfo{
			Name:        strings.TrimSpace(req.CustomerInfo.Name),
			Address:     strings.TrimSpace(req.CustomerInfo.Address),
			PhoneNumber: strings.TrimSpace(req.CustomerInfo.PhoneNumber),
		},
		Items:       make([]orders.Item, 0, len(lines)),
		TotalAmount: total,
		Status:      orders.StatusPlaced,
	}
	for _, line := range lines {
		order.Items = append(order.Items, orders.Item{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			Price:     line.Price,
			ImageURL:  line.ImageURL,
		})
	}

	if err := d.orders.Create(ctx, &order); err != nil {
		var ise *orders.InsufficientStockError
		if errors.As(err, &ise) {
			d.cfg.Metrics.Count(ctx, intaws.MetricInsufficientStock)
			c.JSON(http.StatusConflict, gin.H{"error": "insufficient_stock", "productId": ise.ProductID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_error", "detail": err.Error()})
		return
	}

	// order is committed; everything below is best-effort
	ct.Clear()
	d.cfg.Metrics.Count(ctx, intaws.MetricOrdersPlaced)
	d.hub.Publish(live.Event{Type: live.EventOrderPlaced, Order: order})
	d.publishOrderEvent(c, live.EventOrderPlaced, order)

	c.Header("Location", "/orders/"+order.OrderID)
	c.JSON(http.StatusCreated, gin.H{
		"orderId":     order.OrderID,
		"orderNumber": order.OrderNumber,
		"status":      order.Status,
		"totalAmount": order.TotalAmount,
	})
}

func (d *deps) listMyOrders(c *gin.Context) {
	id, _ := auth.FromContext(c)
	list, err := d.orders.ListByUser(c.Request.Context(), id.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_error", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": viewOrders(list)})
}

func (d *deps) listAllOrders(c *gin.Context) {
	list, err := d.orders.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_error", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": viewOrders(list)})
}

func (d *deps) cancelOrder(c *gin.Context) {
	ctx := c.Request.Context()
	id, _ := auth.FromContext(c)
	orderID := c.Param("id")

	restocked, err := d.orders.Cancel(ctx, orderID, id.UserID, d.cfg.RestockOnCancel)
	if err != nil {
		d.writeOrderError(c, err)
		return
	}
	if d.cfg.RestockOnCancel && !restocked {
		d.cfg.Metrics.Count(ctx, intaws.MetricStockInconsistency)
	}

	d.publishUpdated(c, orderID, live.EventOrderCancelled)
	c.JSON(http.StatusOK, gin.H{"orderId": orderID, "status": orders.StatusCancelled, "restocked": restocked})
}

func (d *deps) updateOrderStatus(c *gin.Context) {
	ctx := c.Request.Context()
	orderID := c.Param("id")

	var req validation.StatusUpdateRequest
	if err := validation.BindAndValidate(c, &req, d.validate); err != nil {
		return
	}

	err := d.orders.UpdateStatus(ctx, orderID, req.Status, strings.TrimSpace(req.TrackingNumber), req.Force)
	if err != nil {
		d.writeOrderError(c, err)
		return
	}

	d.publishUpdated(c, orderID, live.EventStatusChanged)
	c.JSON(http.StatusOK, gin.H{"orderId": orderID, "status": req.Status})
}

// streamOrders pushes committed order events over SSE. scope=mine (default)
// follows the caller's own orders; scope=all is the admin feed. The hub
// subscription is released when the client disconnects.
func (d *deps) streamOrders(c *gin.Context) {
	id, _ := auth.FromContext(c)

	scope := c.DefaultQuery("scope", live.ScopeMine)
	if scope != live.ScopeMine && scope != live.ScopeAll {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_scope"})
		return
	}
	if scope == live.ScopeAll && !id.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission_denied"})
		return
	}

	ch, release := d.hub.Subscribe(scope, id.UserID)
	defer release()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("order", ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// writeOrderError maps store errors from the order workflow onto the API
// error envelope.
func (d *deps) writeOrderError(c *gin.Context, err error) {
	var ite *orders.IllegalTransitionError
	switch {
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
	case errors.Is(err, orders.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "permission_denied"})
	case errors.Is(err, orders.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_status"})
	case errors.As(err, &ite):
		c.JSON(http.StatusConflict, gin.H{"error": "illegal_transition", "currentStatus": ite.Current})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_error", "detail": err.Error()})
	}
}

// publishUpdated re-reads the order and fans the committed change out to
// live subscribers and the fulfillment queue.
func (d *deps) publishUpdated(c *gin.Context, orderID, eventType string) {
	order, err := d.orders.Get(c.Request.Context(), orderID)
	if err != nil || order == nil {
		log.Printf("fetch order %s after update: %v", orderID, err)
		return
	}
	d.hub.Publish(live.Event{Type: eventType, Order: *order})
	d.publishOrderEvent(c, eventType, *order)
}

// publishOrderEvent enqueues the event for the fulfillment worker.
// Failures are logged, not surfaced: the order write already committed.
func (d *deps) publishOrderEvent(c *gin.Context, eventType string, order orders.Order) {
	payload, _ := json.Marshal(map[string]string{
		"event":        eventType,
		"order_id":     order.OrderID,
		"order_number": order.OrderNumber,
	})
	attrs := map[string]string{
		"event":          eventType,
		"order_id":       order.OrderID,
		"correlation_id": c.GetHeader("X-Request-Id"),
	}
	if err := d.publisher.SendOrderEvent(c.Request.Context(), string(payload), attrs); err != nil {
		log.Printf("enqueue order event %s for %s: %v", eventType, order.OrderID, err)
	}
}

func toCents(v float64) int {
	return int(math.Round(v * 100))
}
