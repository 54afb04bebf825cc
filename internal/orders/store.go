package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/plantsforlife/storefront/internal/aws"
)

// Index names on the orders table.
const (
	indexUserOrders = "user-orders-index"
	indexAllOrders  = "all-orders-index"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrNotOwner      = errors.New("order is owned by another user")
	ErrUnknownStatus = errors.New("unknown order status")
)

// InsufficientStockError reports the first order line whose reservation
// failed. The whole transaction is rolled back: no order exists and no
// stock moved.
type InsufficientStockError struct {
	ProductID string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

// IllegalTransitionError reports a status write rejected by the transition
// guard, carrying the status the order actually had.
type IllegalTransitionError struct {
	Current string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition from status %q", e.Current)
}

// Store encapsulates operations on the orders table. Stock reservations
// ride in the same transaction as the order write, so it also knows the
// products table.
type Store struct {
	client        aws.DynamoDBAPI
	tableName     string
	productsTable string
	nowFunc       func() time.Time
}

// NewStore creates a new orders Store.
func NewStore(client aws.DynamoDBAPI, tableName, productsTable string) *Store {
	return &Store{
		client:        client,
		tableName:     tableName,
		productsTable: productsTable,
		nowFunc:       time.Now,
	}
}

// Create persists the order and reserves stock for every line in ONE
// TransactWriteItems call:
//   - Put order, guarded by attribute_not_exists(order_id)
//   - per line: SET stock = stock - :q, guarded by stock >= :q
//
// Either the order exists and all stock is reserved, or nothing happened
// and the caller's cart is safe to retry. A losing concurrent shopper gets
// InsufficientStockError instead of driving stock negative.
func (s *Store) Create(ctx context.Context, order *Order) error {
	now := s.nowFunc().UTC()
	order.RecordType = recordType
	if order.Status == "" {
		order.Status = StatusPlaced
	}
	if order.OrderDate == 0 {
		order.OrderDate = now.UnixMilli()
	}
	order.LastUpdated = now

	orderItem, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	transactItems := make([]types.TransactWriteItem, 0, len(order.Items)+1)
	transactItems = append(transactItems, types.TransactWriteItem{
		Put: &types.Put{
			TableName:           &s.tableName,
			Item:                orderItem,
			ConditionExpression: awsString("attribute_not_exists(order_id)"),
		},
	})
	for _, line := range order.Items {
		transactItems = append(transactItems, types.TransactWriteItem{
			Update: &types.Update{
				TableName: &s.productsTable,
				Key: map[string]types.AttributeValue{
					"product_id": &types.AttributeValueMemberS{Value: line.ProductID},
				},
				UpdateExpression:    awsString("SET stock = stock - :q"),
				ConditionExpression: awsString("attribute_exists(product_id) AND stock >= :q"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":q": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", line.Quantity)},
				},
			},
		})
	}

	_, err = s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			// reason 0 is the order put; reasons 1..n map to order lines
			for i, reason := range tce.CancellationReasons {
				if i == 0 || reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
					continue
				}
				return &InsufficientStockError{ProductID: order.Items[i-1].ProductID}
			}
			return fmt.Errorf("create order transaction canceled: %w", err)
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

// Get fetches an order by order_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// UpdateStatus moves the order to newStatus and records the (trimmed)
// tracking number. The transition table is enforced in the write's
// condition expression, so concurrent admin edits cannot race past it.
// force skips the guard; it is the deliberate override path for
// corrections out of terminal states.
func (s *Store) UpdateStatus(ctx context.Context, orderID, newStatus, trackingNumber string, force bool) error {
	if !KnownStatus(newStatus) {
		return ErrUnknownStatus
	}
	now := s.nowFunc().UTC()

	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         awsString("SET #s = :new, tracking_number = :tn, last_updated = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new": &types.AttributeValueMemberS{Value: newStatus},
			":tn":  &types.AttributeValueMemberS{Value: trackingNumber},
			":ua":  &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
		},
	}

	if force {
		input.ConditionExpression = awsString("attribute_exists(order_id)")
	} else {
		from := allowedFrom[newStatus]
		if len(from) == 0 {
			// nothing legally precedes this status (e.g. Order Placed)
			return s.illegalTransition(ctx, orderID)
		}
		cond := "attribute_exists(order_id) AND #s IN ("
		for i, f := range from {
			ph := fmt.Sprintf(":f%d", i)
			if i > 0 {
				cond += ", "
			}
			cond += ph
			input.ExpressionAttributeValues[ph] = &types.AttributeValueMemberS{Value: f}
		}
		cond += ")"
		input.ConditionExpression = &cond
	}

	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return s.illegalTransition(ctx, orderID)
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// Cancel sets the order to Cancelled on behalf of its owner. The condition
// expression checks ownership and that the status is still cancellable, so
// a racing fulfillment wins or loses atomically. When restock is true the
// same transaction credits each line's quantity back to stock; if a line's
// product has since been deleted the cancel is retried status-only and the
// caller is told no restock happened.
func (s *Store) Cancel(ctx context.Context, orderID, callerUserID string, restock bool) (restocked bool, err error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return false, err
	}
	if order == nil {
		return false, ErrNotFound
	}
	if order.UserID != callerUserID {
		return false, ErrNotOwner
	}
	if !Cancellable(order.Status) {
		return false, &IllegalTransitionError{Current: order.Status}
	}

	now := s.nowFunc().UTC()
	cancelUpdate := &types.Update{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         awsString("SET #s = :cancelled, last_updated = :ua"),
		ConditionExpression:      awsString("user_id = :caller AND #s IN (:placed, :processing)"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cancelled":  &types.AttributeValueMemberS{Value: StatusCancelled},
			":ua":         &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
			":caller":     &types.AttributeValueMemberS{Value: callerUserID},
			":placed":     &types.AttributeValueMemberS{Value: StatusPlaced},
			":processing": &types.AttributeValueMemberS{Value: StatusProcessing},
		},
	}

	transactItems := []types.TransactWriteItem{{Update: cancelUpdate}}
	if restock {
		for _, line := range order.Items {
			transactItems = append(transactItems, types.TransactWriteItem{
				Update: &types.Update{
					TableName: &s.productsTable,
					Key: map[string]types.AttributeValue{
						"product_id": &types.AttributeValueMemberS{Value: line.ProductID},
					},
					UpdateExpression:    awsString("SET stock = stock + :q"),
					ConditionExpression: awsString("attribute_exists(product_id)"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":q": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", line.Quantity)},
					},
				},
			})
		}
	}

	_, err = s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err == nil {
		return restock, nil
	}

	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return false, fmt.Errorf("cancel transact write: %w", err)
	}
	for i, reason := range tce.CancellationReasons {
		if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
			continue
		}
		if i == 0 {
			// ownership or status changed underneath us
			return false, s.illegalTransition(ctx, orderID)
		}
		// a product line vanished; cancel without touching stock
		log.Printf("warning: product %s missing during restock of order %s, cancelling without restock",
			order.Items[i-1].ProductID, orderID)
		_, retryErr := s.Cancel(ctx, orderID, callerUserID, false)
		return false, retryErr
	}
	return false, fmt.Errorf("cancel transaction canceled: %w", err)
}

// illegalTransition re-reads the order to report its actual status.
func (s *Store) illegalTransition(ctx context.Context, orderID string) error {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrNotFound
	}
	return &IllegalTransitionError{Current: order.Status}
}

// ListByUser returns the user's orders, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              awsString(indexUserOrders),
		KeyConditionExpression: awsString("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: awsBool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("query user orders: %w", err)
	}
	return unmarshalOrders(out.Items)
}

// ListAll returns every order, newest first. Admin view.
func (s *Store) ListAll(ctx context.Context) ([]Order, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              awsString(indexAllOrders),
		KeyConditionExpression: awsString("record_type = :rt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rt": &types.AttributeValueMemberS{Value: recordType},
		},
		ScanIndexForward: awsBool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("query all orders: %w", err)
	}
	return unmarshalOrders(out.Items)
}

func unmarshalOrders(items []map[string]types.AttributeValue) ([]Order, error) {
	orders := make([]Order, 0, len(items))
	for _, item := range items {
		var o Order
		if err := attributevalue.UnmarshalMap(item, &o); err != nil {
			return nil, fmt.Errorf("unmarshal order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func awsString(s string) *string { return &s }
func awsBool(b bool) *bool       { return &b }
