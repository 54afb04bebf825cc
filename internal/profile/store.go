package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/plantsforlife/storefront/internal/aws"
)

// Profile is the per-user checkout prefill record, one per identity.
type Profile struct {
	UserID      string    `dynamodbav:"user_id" json:"-"` // PK
	Name        string    `dynamodbav:"name" json:"name"`
	Address     string    `dynamodbav:"address" json:"address"`
	PhoneNumber string    `dynamodbav:"phone_number" json:"phoneNumber"`
	LastUpdated time.Time `dynamodbav:"last_updated" json:"lastUpdated"`
}

// Store encapsulates operations on the profiles table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new profile Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Get fetches the user's profile. Returns (nil, nil) if none saved yet.
func (s *Store) Get(ctx context.Context, userID string) (*Profile, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var p Profile
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &p, nil
}

// Save writes the profile, creating or replacing it, and bumps last_updated.
func (s *Store) Save(ctx context.Context, userID string, p Profile) error {
	p.UserID = userID
	p.LastUpdated = s.nowFunc().UTC()

	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}
