package orders

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"
)

// Order statuses, in lifecycle order.
const (
	StatusPlaced         = "Order Placed"
	StatusProcessing     = "Processing"
	StatusShipped        = "Shipped"
	StatusOutForDelivery = "Out for Delivery"
	StatusDelivered      = "Delivered" // terminal
	StatusCancelled      = "Cancelled" // terminal
)

// Display buckets derived from status. Membership is a pure function of
// status and is never stored.
const (
	BucketOnDelivery = "on-delivery"
	BucketReceived   = "received"
	BucketCancelled  = "cancelled"
)

// allowedFrom maps a target status to the statuses it may be reached from.
// Delivered and Cancelled are terminal: nothing transitions out of them,
// for admins too. Corrections go through the explicit force override.
var allowedFrom = map[string][]string{
	StatusProcessing:     {StatusPlaced},
	StatusShipped:        {StatusProcessing},
	StatusOutForDelivery: {StatusShipped},
	StatusDelivered:      {StatusOutForDelivery},
	StatusCancelled:      {StatusPlaced, StatusProcessing},
}

// KnownStatus reports whether s is one of the defined statuses.
func KnownStatus(s string) bool {
	switch s {
	case StatusPlaced, StatusProcessing, StatusShipped, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is a legal transition.
func CanTransition(from, to string) bool {
	for _, f := range allowedFrom[to] {
		if f == from {
			return true
		}
	}
	return false
}

// Cancellable reports whether a customer may still cancel at this status.
func Cancellable(status string) bool {
	return status == StatusPlaced || status == StatusProcessing
}

// Bucket classifies a status for order-history display.
func Bucket(status string) string {
	switch status {
	case StatusDelivered:
		return BucketReceived
	case StatusCancelled:
		return BucketCancelled
	case StatusPlaced, StatusProcessing, StatusShipped, StatusOutForDelivery:
		return BucketOnDelivery
	}
	return ""
}

// recordType is a constant attribute giving all orders a shared partition
// on the all-orders index.
const recordType = "ORDER"

// CustomerInfo is the checkout snapshot of the shipping details. Immutable
// after order creation; later profile edits do not touch placed orders.
type CustomerInfo struct {
	Name        string `dynamodbav:"name" json:"name"`
	Address     string `dynamodbav:"address" json:"address"`
	PhoneNumber string `dynamodbav:"phone_number" json:"phoneNumber"`
}

// Item is one order line: a product snapshot taken at order time. Product
// edits after checkout never retroactively change placed orders.
type Item struct {
	ProductID string  `dynamodbav:"product_id" json:"productId"`
	Name      string  `dynamodbav:"name" json:"name"`
	Quantity  int     `dynamodbav:"quantity" json:"quantity"`
	Price     float64 `dynamodbav:"price" json:"price"`
	ImageURL  string  `dynamodbav:"image_url" json:"imageUrl"`
}

// Order is the item stored in the orders DynamoDB table. One document per
// order; customer and admin views are queries over the same record.
type Order struct {
	OrderID        string       `dynamodbav:"order_id" json:"orderId"`       // PK
	RecordType     string       `dynamodbav:"record_type" json:"-"`          // all-orders-index HASH, always "ORDER"
	OrderNumber    string       `dynamodbav:"order_number" json:"orderNumber"`
	UserID         string       `dynamodbav:"user_id" json:"userId"` // user-orders-index HASH
	CustomerInfo   CustomerInfo `dynamodbav:"customer_info" json:"customerInfo"`
	Items          []Item       `dynamodbav:"items" json:"items"`
	TotalAmount    float64      `dynamodbav:"total_amount" json:"totalAmount"`
	Status         string       `dynamodbav:"status" json:"status"`
	TrackingNumber string       `dynamodbav:"tracking_number" json:"trackingNumber"`
	OrderDate      int64        `dynamodbav:"order_date" json:"orderDate"` // epoch millis, index RANGE key
	LastUpdated    time.Time    `dynamodbav:"last_updated" json:"lastUpdated"`
}

const base36Upper = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNumber builds the human-readable order reference:
// PFL-{last 6 digits of epoch millis}-{4 random base36 chars}. Not
// guaranteed unique; collisions are negligible at storefront scale and
// order_id remains the real key.
func NewOrderNumber(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = base36Upper[rand.IntN(len(base36Upper))]
	}
	return fmt.Sprintf("PFL-%s-%s", ms, suffix)
}
