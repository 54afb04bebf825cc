package aws

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names emitted by the storefront.
const (
	MetricOrdersPlaced       = "OrdersPlaced"
	MetricInsufficientStock  = "InsufficientStock"
	MetricStockInconsistency = "StockInconsistency"
)

// Metrics emits operational counters to CloudWatch under a per-deployment
// namespace ("Storefront/<appID>"). A nil *Metrics is a no-op so wiring
// stays optional in local runs and tests.
type Metrics struct {
	client    CloudWatchAPI
	namespace string
}

// NewMetrics returns a Metrics emitter for the given app id.
func NewMetrics(client CloudWatchAPI, appID string) *Metrics {
	return &Metrics{
		client:    client,
		namespace: "Storefront/" + appID,
	}
}

// Count emits a count metric with value 1. Failures are logged, never
// propagated: metrics must not fail a customer-facing write.
func (m *Metrics) Count(ctx context.Context, name string) {
	if m == nil || m.client == nil {
		return
	}
	now := time.Now().UTC()
	one := 1.0
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &m.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: &name,
				Timestamp:  &now,
				Value:      &one,
				Unit:       cwtypes.StandardUnitCount,
			},
		},
	})
	if err != nil {
		log.Printf("put metric %s: %v", name, err)
	}
}
