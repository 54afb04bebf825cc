package main

// OrderEvent is the payload sent from API -> SQS -> Worker.
type OrderEvent struct {
	Event         string `json:"event"`
	OrderID       string `json:"order_id"`
	OrderNumber   string `json:"order_number,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}
