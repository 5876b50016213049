package graphqlclient

import (
	"context"
	"encoding/json"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/observability/metrics"
)

type GraphQLClientWithMetrics struct {
	client GraphQLInterface
}

func NewGraphQLClientWithMetrics(client GraphQLInterface) *GraphQLClientWithMetrics {
	return &GraphQLClientWithMetrics{client: client}
}

func (c *GraphQLClientWithMetrics) Query(ctx context.Context, endpoint string, req *Request, maxResponseBytes int64) (result json.RawMessage, err error) {
	startTime := time.Now()
	result, err = c.client.Query(ctx, endpoint, req, maxResponseBytes)
	metrics.RecordGraphQLClientLatency(time.Since(startTime), req.OperationName, err != nil)

	return result, err
}
