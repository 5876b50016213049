package fetcher_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/clients/graphqlclient"
	"github.com/babylonlabs-io/metrics-publisher/internal/config"
	"github.com/babylonlabs-io/metrics-publisher/internal/fetcher"
	"github.com/babylonlabs-io/metrics-publisher/internal/types"
	"github.com/babylonlabs-io/metrics-publisher/tests/mocks"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const sourceURL = "https://indexer.example.com/graphql"

type queryFunc = func(context.Context, string, *graphqlclient.Request, int64) (json.RawMessage, error)

func operation(name string) any {
	return mock.MatchedBy(func(req *graphqlclient.Request) bool {
		return req.OperationName == name
	})
}

func testWindow(t *testing.T) fetcher.Window {
	w, err := fetcher.TrailingWindow(time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC), 24*time.Hour)
	require.NoError(t, err)
	return w
}

func newFetcher(t *testing.T, maxPages int) (*fetcher.Fetcher, *mocks.GraphQLInterface) {
	client := mocks.NewGraphQLInterface(t)
	cfg := config.DefaultSourceConfig()
	cfg.MaxPages = maxPages
	return fetcher.New(client, cfg), client
}

func page(hasNext bool, cursor any, edges string) json.RawMessage {
	cursorJSON, _ := json.Marshal(cursor)
	return json.RawMessage(fmt.Sprintf(
		`{"transfersConnection":{"pageInfo":{"hasNextPage":%t,"endCursor":%s},"edges":[%s]}}`,
		hasNext, cursorJSON, edges,
	))
}

func edge(from, to string) string {
	return fmt.Sprintf(`{"node":{"from":{"id":%q},"to":{"id":%q}}}`, from, to)
}

func TestFetchActiveActors(t *testing.T) {
	ctx := t.Context()
	window := testWindow(t)

	t.Run("pages are followed until the last one", func(t *testing.T) {
		f, client := newFetcher(t, 100)
		pages := map[string]json.RawMessage{
			"":   page(true, "c1", edge("a", "b")+`,{"node":null},{}`),
			"c1": page(true, "c2", edge("b", "c")+`,{"node":{"from":{"id":"d"},"to":null}}`),
			"c2": page(false, nil, edge("e", "a")),
		}
		client.On("Query", mock.Anything, sourceURL, operation("TransfersPage"), int64(2_000_000)).
			Return(queryFunc(func(_ context.Context, _ string, req *graphqlclient.Request, _ int64) (json.RawMessage, error) {
				assert.Equal(t, 200, req.Variables["first"])
				assert.Equal(t, "2024-03-01T12:00:00Z", req.Variables["from"])
				assert.Equal(t, "2024-03-02T12:00:00Z", req.Variables["to"])
				after := ""
				if cursor, ok := req.Variables["after"].(*string); ok && cursor != nil {
					after = *cursor
				}
				return pages[after], nil
			})).Times(3)

		actors, err := f.FetchActiveActors(ctx, sourceURL, window)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, actors.Sorted())
	})
	t.Run("edges with non string ids are skipped", func(t *testing.T) {
		f, client := newFetcher(t, 100)
		edges := edge("a", "b") +
			`,{"node":{"from":{"id":42},"to":{"id":"c"}}}` +
			`,{"node":{"from":{"id":{"nested":true}},"to":{"id":null}}}`
		client.On("Query", mock.Anything, sourceURL, operation("TransfersPage"), mock.Anything).
			Return(page(false, nil, edges), nil).Once()

		actors, err := f.FetchActiveActors(ctx, sourceURL, window)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, actors.Sorted())
	})
	t.Run("more pages without a cursor", func(t *testing.T) {
		f, client := newFetcher(t, 100)
		client.On("Query", mock.Anything, sourceURL, operation("TransfersPage"), mock.Anything).
			Return(page(true, nil, edge("a", "b")), nil).Once()

		actors, err := f.FetchActiveActors(ctx, sourceURL, window)
		require.Error(t, err)
		assert.True(t, types.IsErrorCode(err, types.ProtocolError))
		assert.Nil(t, actors)
	})
	t.Run("page limit", func(t *testing.T) {
		const maxPages = 3
		f, client := newFetcher(t, maxPages)
		client.On("Query", mock.Anything, sourceURL, operation("TransfersPage"), mock.Anything).
			Return(queryFunc(func(context.Context, string, *graphqlclient.Request, int64) (json.RawMessage, error) {
				return page(true, gofakeit.UUID(), edge(gofakeit.UUID(), gofakeit.UUID())), nil
			})).Times(maxPages)

		actors, err := f.FetchActiveActors(ctx, sourceURL, window)
		require.Error(t, err)
		assert.True(t, types.IsErrorCode(err, types.PageLimitExceeded))
		assert.Contains(t, err.Error(), "exceeded max pages (3)")
		assert.Nil(t, actors)
	})
	t.Run("malformed pages", func(t *testing.T) {
		bodies := map[string]string{
			"no connection": `{}`,
			"no edges":      `{"transfersConnection":{"pageInfo":{"hasNextPage":false}}}`,
			"null edges":    `{"transfersConnection":{"pageInfo":{"hasNextPage":false},"edges":null}}`,
			"no page info":  `{"transfersConnection":{"edges":[]}}`,
			"not an object": `[1,2]`,
		}
		for name, body := range bodies {
			t.Run(name, func(t *testing.T) {
				f, client := newFetcher(t, 100)
				client.On("Query", mock.Anything, sourceURL, operation("TransfersPage"), mock.Anything).
					Return(json.RawMessage(body), nil).Once()

				_, err := f.FetchActiveActors(ctx, sourceURL, window)
				require.Error(t, err)
				assert.True(t, types.IsErrorCode(err, types.ProtocolError))
			})
		}
	})
	t.Run("transport failure", func(t *testing.T) {
		f, client := newFetcher(t, 100)
		client.On("Query", mock.Anything, sourceURL, operation("TransfersPage"), mock.Anything).
			Return(page(true, "c1", edge("a", "b")), nil).Once()
		client.On("Query", mock.Anything, sourceURL, operation("TransfersPage"), mock.Anything).
			Return(nil, types.NewNetworkError(fmt.Errorf("connection reset"))).Once()

		actors, err := f.FetchActiveActors(ctx, sourceURL, window)
		require.Error(t, err)
		assert.True(t, types.IsErrorCode(err, types.NetworkError))
		assert.Nil(t, actors)
	})
}

func TestFetchExtrinsicsCount(t *testing.T) {
	ctx := t.Context()
	window := testWindow(t)

	t.Run("ok", func(t *testing.T) {
		f, client := newFetcher(t, 100)
		client.On("Query", mock.Anything, sourceURL, operation("ExtrinsicsCount"), int64(1_000_000)).
			Return(json.RawMessage(`{"extrinsicsConnection":{"totalCount":1234}}`), nil).Once()

		count, err := f.FetchExtrinsicsCount(ctx, sourceURL, window)
		require.NoError(t, err)
		assert.EqualValues(t, 1234, count)
	})
	t.Run("missing or invalid total", func(t *testing.T) {
		for _, body := range []string{`{}`, `{"extrinsicsConnection":{}}`, `{"extrinsicsConnection":{"totalCount":-1}}`, `{"extrinsicsConnection":{"totalCount":"many"}}`} {
			f, client := newFetcher(t, 100)
			client.On("Query", mock.Anything, sourceURL, operation("ExtrinsicsCount"), mock.Anything).
				Return(json.RawMessage(body), nil).Once()

			_, err := f.FetchExtrinsicsCount(ctx, sourceURL, window)
			require.Error(t, err, body)
			assert.True(t, types.IsErrorCode(err, types.ProtocolError), body)
		}
	})
}

func TestFetchWindow(t *testing.T) {
	ctx := t.Context()
	window := testWindow(t)

	t.Run("both results", func(t *testing.T) {
		f, client := newFetcher(t, 100)
		client.On("Query", mock.Anything, sourceURL, operation("TransfersPage"), mock.Anything).
			Return(page(false, nil, edge("a", "b")), nil).Once()
		client.On("Query", mock.Anything, sourceURL, operation("ExtrinsicsCount"), mock.Anything).
			Return(json.RawMessage(`{"extrinsicsConnection":{"totalCount":7}}`), nil).Once()

		result, err := f.FetchWindow(ctx, sourceURL, window)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Actors.Len())
		assert.EqualValues(t, 7, result.Extrinsics)
		assert.Equal(t, "2024-03-02", result.Window.Day())
	})
	t.Run("one failure fails the whole window", func(t *testing.T) {
		f, client := newFetcher(t, 100)
		client.On("Query", mock.Anything, sourceURL, operation("TransfersPage"), mock.Anything).
			Return(page(false, nil, edge("a", "b")), nil).Maybe()
		client.On("Query", mock.Anything, sourceURL, operation("ExtrinsicsCount"), mock.Anything).
			Return(nil, types.NewProtocolError("graphql error")).Once()

		result, err := f.FetchWindow(ctx, sourceURL, window)
		require.Error(t, err)
		assert.True(t, types.IsErrorCode(err, types.ProtocolError))
		assert.Nil(t, result)
	})
}

func TestTrailingWindow(t *testing.T) {
	t.Run("bounds", func(t *testing.T) {
		now := time.Date(2024, 3, 2, 0, 30, 0, 0, time.FixedZone("UTC+2", 2*60*60))
		w, err := fetcher.TrailingWindow(now, 24*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, time.UTC, w.To.Location())
		assert.Equal(t, 24*time.Hour, w.To.Sub(w.From))
		assert.Equal(t, "2024-03-01", w.Day())
	})
	t.Run("invalid", func(t *testing.T) {
		for _, tc := range []struct {
			now  time.Time
			span time.Duration
		}{
			{time.Time{}, time.Hour},
			{time.Now(), 0},
			{time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC), time.Hour},
		} {
			_, err := fetcher.TrailingWindow(tc.now, tc.span)
			require.Error(t, err)
			assert.True(t, types.IsErrorCode(err, types.TimestampError))
		}
	})
}
