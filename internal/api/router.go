package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/certification"
	"github.com/babylonlabs-io/metrics-publisher/internal/services"
)

const notFoundBody = "Not found"

// AssetSource serves the payload and certificate of an allow-listed path.
type AssetSource interface {
	Asset(path string) (*services.Asset, bool)
}

type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Router maps raw request targets onto the certified assets.
type Router struct {
	assets       AssetSource
	cacheControl string
}

func NewRouter(assets AssetSource, cacheMaxAge time.Duration) *Router {
	return &Router{
		assets:       assets,
		cacheControl: fmt.Sprintf("public, max-age=%d", int(cacheMaxAge.Seconds())),
	}
}

// NormalizePath drops the query string and any scheme://host prefix of raw. An
// empty result is the root path.
func NormalizePath(raw string) string {
	path, _, _ := strings.Cut(raw, "?")
	if _, remainder, ok := strings.Cut(path, "://"); ok {
		if idx := strings.IndexByte(remainder, '/'); idx >= 0 {
			path = remainder[idx:]
		} else {
			path = "/"
		}
	}
	if path == "" {
		return "/"
	}
	return path
}

// Handle answers 200 for every allow-listed path, even when the payload is still
// the default placeholder, and 404 for anything else.
func (r *Router) Handle(rawPath string) *Response {
	path := NormalizePath(rawPath)

	asset, ok := r.assets.Asset(path)
	if !ok {
		headers := http.Header{}
		headers.Set("Content-Type", "text/plain")
		return &Response{
			StatusCode: http.StatusNotFound,
			Headers:    headers,
			Body:       []byte(notFoundBody),
		}
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Cache-Control", r.cacheControl)
	if asset.CertificateHeader != "" {
		headers.Set(certification.HeaderName, asset.CertificateHeader)
	}
	return &Response{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       []byte(asset.Payload),
	}
}
