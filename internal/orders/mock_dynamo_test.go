package orders

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a small in-memory double for the DynamoDB calls the orders
// store issues. It evaluates exactly the condition and update expressions
// this package uses. NOTE: intentionally minimal, not production-grade.
type mockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	transactCalls int
	updateCalls   int
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		tables: map[string]map[string]map[string]types.AttributeValue{},
	}
}

func (m *mockDynamo) ensureTable(tbl string) {
	if _, ok := m.tables[tbl]; !ok {
		m.tables[tbl] = map[string]map[string]types.AttributeValue{}
	}
}

func pkOf(attrs map[string]types.AttributeValue) (string, error) {
	if v, ok := attrs["order_id"]; ok {
		return v.(*types.AttributeValueMemberS).Value, nil
	}
	if v, ok := attrs["product_id"]; ok {
		return v.(*types.AttributeValueMemberS).Value, nil
	}
	return "", errors.New("no primary key attribute")
}

func strAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func numAttr(item map[string]types.AttributeValue, name string) int64 {
	if v, ok := item[name].(*types.AttributeValueMemberN); ok {
		n, _ := strconv.ParseInt(v.Value, 10, 64)
		return n
	}
	return 0
}

func setNumAttr(item map[string]types.AttributeValue, name string, n int64) {
	item[name] = &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}

// checkCondition evaluates the condition expressions used by the store
// against the stored item (nil means absent).
func checkCondition(cond string, item map[string]types.AttributeValue, values map[string]types.AttributeValue) bool {
	switch {
	case cond == "attribute_not_exists(order_id)" || cond == "attribute_not_exists(product_id)":
		return item == nil
	case cond == "attribute_exists(order_id)" || cond == "attribute_exists(product_id)":
		return item != nil
	case cond == "attribute_exists(product_id) AND stock >= :q":
		if item == nil {
			return false
		}
		q := values[":q"].(*types.AttributeValueMemberN)
		want, _ := strconv.ParseInt(q.Value, 10, 64)
		return numAttr(item, "stock") >= want
	case cond == "user_id = :caller AND #s IN (:placed, :processing)":
		if item == nil {
			return false
		}
		caller := values[":caller"].(*types.AttributeValueMemberS).Value
		if strAttr(item, "user_id") != caller {
			return false
		}
		s := strAttr(item, "status")
		return s == values[":placed"].(*types.AttributeValueMemberS).Value ||
			s == values[":processing"].(*types.AttributeValueMemberS).Value
	case strings.Contains(cond, "#s IN ("):
		if item == nil {
			return false
		}
		s := strAttr(item, "status")
		for k, v := range values {
			if !strings.HasPrefix(k, ":f") {
				continue
			}
			if s == v.(*types.AttributeValueMemberS).Value {
				return true
			}
		}
		return false
	}
	return true
}

// applyUpdate applies the update expressions used by the store.
func applyUpdate(expr string, item map[string]types.AttributeValue, values map[string]types.AttributeValue) {
	switch expr {
	case "SET stock = stock - :q":
		q := numAttr(map[string]types.AttributeValue{"q": values[":q"]}, "q")
		setNumAttr(item, "stock", numAttr(item, "stock")-q)
	case "SET stock = stock + :q":
		q := numAttr(map[string]types.AttributeValue{"q": values[":q"]}, "q")
		setNumAttr(item, "stock", numAttr(item, "stock")+q)
	case "SET #s = :cancelled, last_updated = :ua":
		item["status"] = values[":cancelled"]
		item["last_updated"] = values[":ua"]
	case "SET #s = :new, tracking_number = :tn, last_updated = :ua":
		item["status"] = values[":new"]
		item["tracking_number"] = values[":tn"]
		item["last_updated"] = values[":ua"]
	}
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	pk, err := pkOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.tables[table][pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	pk, err := pkOf(params.Item)
	if err != nil {
		return nil, err
	}
	if params.ConditionExpression != nil {
		if !checkCondition(*params.ConditionExpression, m.tables[table][pk], nil) {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.tables[table][pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	table := *params.TableName
	m.ensureTable(table)
	pk, err := pkOf(params.Key)
	if err != nil {
		return nil, err
	}
	item := m.tables[table][pk]
	if params.ConditionExpression != nil {
		if !checkCondition(*params.ConditionExpression, item, params.ExpressionAttributeValues) {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	if item == nil {
		item = map[string]types.AttributeValue{}
		m.tables[table][pk] = item
	}
	applyUpdate(*params.UpdateExpression, item, params.ExpressionAttributeValues)
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	pk, err := pkOf(params.Key)
	if err != nil {
		return nil, err
	}
	delete(m.tables[table], pk)
	return &dyn.DeleteItemOutput{}, nil
}

// TransactWriteItems validates every item's condition first, then applies
// all writes, mirroring DynamoDB's all-or-nothing contract. On a failed
// condition it reports per-item CancellationReasons the way the real
// service does.
func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactCalls++

	reasons := make([]types.CancellationReason, len(params.TransactItems))
	failed := false
	for i, ti := range params.TransactItems {
		code := "None"
		switch {
		case ti.Put != nil:
			m.ensureTable(*ti.Put.TableName)
			pk, err := pkOf(ti.Put.Item)
			if err != nil {
				return nil, err
			}
			if ti.Put.ConditionExpression != nil &&
				!checkCondition(*ti.Put.ConditionExpression, m.tables[*ti.Put.TableName][pk], ti.Put.ExpressionAttributeValues) {
				code = "ConditionalCheckFailed"
				failed = true
			}
		case ti.Update != nil:
			m.ensureTable(*ti.Update.TableName)
			pk, err := pkOf(ti.Update.Key)
			if err != nil {
				return nil, err
			}
			if ti.Update.ConditionExpression != nil &&
				!checkCondition(*ti.Update.ConditionExpression, m.tables[*ti.Update.TableName][pk], ti.Update.ExpressionAttributeValues) {
				code = "ConditionalCheckFailed"
				failed = true
			}
		}
		reasons[i] = types.CancellationReason{Code: &code}
	}
	if failed {
		return nil, &types.TransactionCanceledException{CancellationReasons: reasons}
	}

	for _, ti := range params.TransactItems {
		switch {
		case ti.Put != nil:
			pk, _ := pkOf(ti.Put.Item)
			m.tables[*ti.Put.TableName][pk] = ti.Put.Item
		case ti.Update != nil:
			pk, _ := pkOf(ti.Update.Key)
			item := m.tables[*ti.Update.TableName][pk]
			if item == nil {
				item = map[string]types.AttributeValue{}
				m.tables[*ti.Update.TableName][pk] = item
			}
			applyUpdate(*ti.Update.UpdateExpression, item, ti.Update.ExpressionAttributeValues)
		}
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}

// Query supports the two orders GSIs: filter by the key condition, sort by
// order_date honoring ScanIndexForward.
func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)

	var match func(item map[string]types.AttributeValue) bool
	switch *params.KeyConditionExpression {
	case "user_id = :uid":
		uid := params.ExpressionAttributeValues[":uid"].(*types.AttributeValueMemberS).Value
		match = func(item map[string]types.AttributeValue) bool { return strAttr(item, "user_id") == uid }
	case "record_type = :rt":
		rt := params.ExpressionAttributeValues[":rt"].(*types.AttributeValueMemberS).Value
		match = func(item map[string]types.AttributeValue) bool { return strAttr(item, "record_type") == rt }
	default:
		return nil, errors.New("unsupported key condition")
	}

	var items []map[string]types.AttributeValue
	for _, item := range m.tables[table] {
		if match(item) {
			items = append(items, item)
		}
	}
	asc := params.ScanIndexForward == nil || *params.ScanIndexForward
	sort.Slice(items, func(i, j int) bool {
		if asc {
			return numAttr(items[i], "order_date") < numAttr(items[j], "order_date")
		}
		return numAttr(items[i], "order_date") > numAttr(items[j], "order_date")
	})
	return &dyn.QueryOutput{Items: items}, nil
}

func (m *mockDynamo) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	var items []map[string]types.AttributeValue
	for _, item := range m.tables[table] {
		items = append(items, item)
	}
	return &dyn.ScanOutput{Items: items}, nil
}
