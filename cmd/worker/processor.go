package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"

	"github.com/plantsforlife/storefront/internal/aws"
	"github.com/plantsforlife/storefront/internal/orders"
)

// Processor handles SQS order events and performs fulfillment intake:
// freshly placed orders are acknowledged by moving them
// "Order Placed" -> "Processing" through the guarded transition, so
// duplicate deliveries and orders the customer cancelled first are
// swallowed instead of retried forever.
type Processor struct {
	orderStore *orders.Store
}

// NewProcessor creates a new worker processor with AWS clients injected.
func NewProcessor(clients *aws.AWSClients, ordersTable, productsTable string) *Processor {
	return &Processor{
		orderStore: orders.NewStore(clients.DynamoDB, ordersTable, productsTable),
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. If failed too many times, message goes to DLQ.
			log.Printf("worker error: %v", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg OrderEvent
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	log.Printf("[worker] received event=%s order=%s corr=%s", msg.Event, msg.OrderID, msg.CorrelationID)

	// only fresh orders need intake; status changes and cancellations are
	// fan-out-only events
	if msg.Event != "order_placed" {
		return nil
	}

	order, err := p.orderStore.Get(ctx, msg.OrderID)
	if err != nil {
		return fmt.Errorf("failed to fetch order: %w", err)
	}
	if order == nil {
		// Should never happen. DLQ if it does.
		return fmt.Errorf("order not found: %s", msg.OrderID)
	}

	err = p.orderStore.UpdateStatus(ctx, msg.OrderID, orders.StatusProcessing, order.TrackingNumber, false)
	var ite *orders.IllegalTransitionError
	if errors.As(err, &ite) {
		switch ite.Current {
		case orders.StatusCancelled:
			// customer cancelled before intake; nothing to do
			log.Printf("[worker] order=%s cancelled before intake", msg.OrderID)
			return nil
		case orders.StatusPlaced:
			return fmt.Errorf("unexpected guard failure for order=%s", msg.OrderID)
		default:
			// already acknowledged by a competing delivery
			log.Printf("[worker] duplicate intake event for order=%s (status=%s)", msg.OrderID, ite.Current)
			return nil
		}
	}
	if err != nil {
		return fmt.Errorf("failed to acknowledge order=%s: %w", msg.OrderID, err)
	}

	log.Printf("[worker] acknowledged order=%s number=%s", msg.OrderID, msg.OrderNumber)
	return nil
}
