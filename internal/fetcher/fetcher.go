package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/babylonlabs-io/metrics-publisher/internal/clients/graphqlclient"
	"github.com/babylonlabs-io/metrics-publisher/internal/config"
	"github.com/babylonlabs-io/metrics-publisher/internal/observability/metrics"
	"github.com/babylonlabs-io/metrics-publisher/internal/series"
	"github.com/babylonlabs-io/metrics-publisher/internal/types"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

type WindowResult struct {
	Window     Window
	Actors     series.ActorSet
	Extrinsics uint64
}

type Fetcher struct {
	client graphqlclient.GraphQLInterface
	cfg    *config.SourceConfig
}

func New(client graphqlclient.GraphQLInterface, cfg *config.SourceConfig) *Fetcher {
	return &Fetcher{
		client: client,
		cfg:    cfg,
	}
}

// FetchWindow reads the active actors and the extrinsics count of the window
// concurrently. Either both succeed or nothing is returned.
func (f *Fetcher) FetchWindow(ctx context.Context, url string, window Window) (*WindowResult, error) {
	var (
		actors     series.ActorSet
		extrinsics uint64
	)

	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		actors, err = f.FetchActiveActors(ctx, url, window)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		extrinsics, err = f.FetchExtrinsicsCount(ctx, url, window)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	return &WindowResult{
		Window:     window,
		Actors:     actors,
		Extrinsics: extrinsics,
	}, nil
}

// FetchActiveActors follows the transfers cursor until the last page and collects
// every sender and receiver id.
func (f *Fetcher) FetchActiveActors(ctx context.Context, url string, window Window) (series.ActorSet, error) {
	actors := series.NewActorSet()
	var after *string

	for page := 1; ; page++ {
		if page > f.cfg.MaxPages {
			return nil, types.NewErrorWithMsg(
				http.StatusBadGateway, types.PageLimitExceeded,
				fmt.Sprintf("exceeded max pages (%d)", f.cfg.MaxPages),
			)
		}

		variables := window.variables()
		variables["first"] = f.cfg.PageSize
		variables["after"] = after

		data, err := f.client.Query(ctx, url, &graphqlclient.Request{
			OperationName: "TransfersPage",
			Query:         transfersPageQuery,
			Variables:     variables,
		}, f.cfg.MaxPageBytes)
		if err != nil {
			return nil, err
		}

		var resp transfersPage
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, types.NewProtocolError(fmt.Sprintf("malformed transfers page: %v", err))
		}
		conn := resp.TransfersConnection
		if conn == nil {
			return nil, types.NewProtocolError("missing transfersConnection")
		}
		if conn.Edges == nil {
			return nil, types.NewProtocolError("missing edges")
		}
		if conn.PageInfo == nil {
			return nil, types.NewProtocolError("missing pageInfo")
		}

		for _, edge := range *conn.Edges {
			if edge.Node == nil {
				continue
			}
			if id, ok := edge.Node.From.id(); ok {
				actors.Add(id)
			}
			if id, ok := edge.Node.To.id(); ok {
				actors.Add(id)
			}
		}

		log.Ctx(ctx).Debug().
			Int("page", page).
			Int("edges", len(*conn.Edges)).
			Int("actors", actors.Len()).
			Bool("has_next_page", conn.PageInfo.HasNextPage).
			Msg("transfers page fetched")

		if !conn.PageInfo.HasNextPage {
			metrics.RecordFetchPages(page)
			return actors, nil
		}
		cursor := conn.PageInfo.EndCursor
		if cursor == nil || *cursor == "" {
			return nil, types.NewProtocolError("hasNextPage true but endCursor missing")
		}
		after = cursor
	}
}

func (f *Fetcher) FetchExtrinsicsCount(ctx context.Context, url string, window Window) (uint64, error) {
	data, err := f.client.Query(ctx, url, &graphqlclient.Request{
		OperationName: "ExtrinsicsCount",
		Query:         extrinsicsCountQuery,
		Variables:     window.variables(),
	}, f.cfg.MaxCountBytes)
	if err != nil {
		return 0, err
	}

	var resp extrinsicsCount
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, types.NewProtocolError(fmt.Sprintf("malformed extrinsics count: %v", err))
	}
	if resp.ExtrinsicsConnection == nil || resp.ExtrinsicsConnection.TotalCount == nil {
		return 0, types.NewProtocolError("missing extrinsics totalCount")
	}

	return *resp.ExtrinsicsConnection.TotalCount, nil
}
