package graphqlclient

import (
	"context"
	"encoding/json"
)

//go:generate mockery --name=GraphQLInterface --output=../../../tests/mocks --outpkg=mocks --filename=mock_graphql_client.go
type GraphQLInterface interface {
	// Query posts req to endpoint and returns the raw "data" member of the response.
	Query(ctx context.Context, endpoint string, req *Request, maxResponseBytes int64) (json.RawMessage, error)
}
