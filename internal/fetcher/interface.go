package fetcher

import (
	"context"
)

//go:generate mockery --name=FetcherInterface --output=../../tests/mocks --outpkg=mocks --filename=mock_fetcher.go
type FetcherInterface interface {
	FetchWindow(ctx context.Context, url string, window Window) (*WindowResult, error)
}
