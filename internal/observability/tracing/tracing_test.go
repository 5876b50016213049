package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInjectTraceID(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))

	ctx := InjectTraceID(context.Background())
	first := TraceID(ctx)
	assert.Len(t, first, 36)

	second := TraceID(InjectTraceID(context.Background()))
	assert.NotEqual(t, first, second)
}
