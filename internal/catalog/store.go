package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/plantsforlife/storefront/internal/aws"
)

// ErrNotFound indicates a write against a product that does not exist.
var ErrNotFound = errors.New("product not found")

// Store encapsulates operations on the products table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
	newID     func() string
}

// NewStore creates a new catalog Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
		newID:     uuid.NewString,
	}
}

// List returns every product in the catalog. The seed sentinel is filtered out.
func (s *Store) List(ctx context.Context) ([]Product, error) {
	out, err := s.client.Scan(ctx, &dyn.ScanInput{
		TableName: &s.tableName,
	})
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	products := make([]Product, 0, len(out.Items))
	for _, item := range out.Items {
		var p Product
		if err := attributevalue.UnmarshalMap(item, &p); err != nil {
			return nil, fmt.Errorf("unmarshal product: %w", err)
		}
		if p.ProductID == seedSentinelID {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// Get fetches a product by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, productID string) (*Product, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var p Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	return &p, nil
}

// Create inserts a new product. The id and created_at are assigned here.
func (s *Store) Create(ctx context.Context, p Product) (*Product, error) {
	p.ProductID = s.newID()
	p.CreatedAt = s.nowFunc().UTC()

	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return nil, fmt.Errorf("marshal product: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(product_id)"),
	})
	if err != nil {
		return nil, fmt.Errorf("put product: %w", err)
	}
	return &p, nil
}

// Update overwrites the mutable fields of an existing product.
func (s *Store) Update(ctx context.Context, productID string, p Product) error {
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		UpdateExpression: awsString("SET #n = :name, description = :desc, category = :cat, image_url = :img, price = :price, stock = :stock"),
		ExpressionAttributeNames: map[string]string{
			"#n": "name",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":name":  &types.AttributeValueMemberS{Value: p.Name},
			":desc":  &types.AttributeValueMemberS{Value: p.Description},
			":cat":   &types.AttributeValueMemberS{Value: p.Category},
			":img":   &types.AttributeValueMemberS{Value: p.ImageURL},
			":price": &types.AttributeValueMemberN{Value: fmt.Sprintf("%g", p.Price)},
			":stock": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", p.Stock)},
		},
		ConditionExpression: awsString("attribute_exists(product_id)"),
	}
	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		if isConditionalFailure(err) {
			return ErrNotFound
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Delete removes a product. Deleting an absent product is not an error.
func (s *Store) Delete(ctx context.Context, productID string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
	})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// SeedIfEmpty writes the starter catalog exactly once per deployment.
// A sentinel item is created with attribute_not_exists first, so two
// concurrent cold starts cannot both seed: the loser of the sentinel race
// returns (false, nil) without writing any product.
func (s *Store) SeedIfEmpty(ctx context.Context) (bool, error) {
	now := s.nowFunc().UTC()
	sentinel := map[string]types.AttributeValue{
		"product_id": &types.AttributeValueMemberS{Value: seedSentinelID},
		"created_at": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
	}
	_, err := s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                sentinel,
		ConditionExpression: awsString("attribute_not_exists(product_id)"),
	})
	if err != nil {
		if isConditionalFailure(err) {
			return false, nil
		}
		return false, fmt.Errorf("put seed sentinel: %w", err)
	}

	transactItems := make([]types.TransactWriteItem, 0, len(StarterCatalog))
	for _, p := range StarterCatalog {
		p.ProductID = s.newID()
		p.CreatedAt = now
		item, err := attributevalue.MarshalMap(p)
		if err != nil {
			return false, fmt.Errorf("marshal seed product: %w", err)
		}
		transactItems = append(transactItems, types.TransactWriteItem{
			Put: &types.Put{
				TableName: &s.tableName,
				Item:      item,
			},
		})
	}
	_, err = s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		return false, fmt.Errorf("seed catalog: %w", err)
	}
	return true, nil
}

func isConditionalFailure(err error) bool {
	var ae smithy.APIError
	if errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException" {
		return true
	}
	var cc *types.ConditionalCheckFailedException
	return errors.As(err, &cc)
}

func awsString(s string) *string { return &s }
