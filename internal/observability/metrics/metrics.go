package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	Skipped                  Outcome       = "skipped"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once                           sync.Once
	metricsRouter                  *chi.Mux
	clientRequestDurationHistogram *prometheus.HistogramVec
	graphqlClientLatency           *prometheus.HistogramVec
	pollerDurationHistogram        *prometheus.HistogramVec
	refreshCounter                 *prometheus.CounterVec
	fetchPagesHistogram            prometheus.Histogram
	activeWalletsGauge             prometheus.Gauge
	newWalletsGauge                prometheus.Gauge
	extrinsicsGauge                prometheus.Gauge
	certificationCounter           *prometheus.CounterVec
	assetRequestCounter            *prometheus.CounterVec
	notifierSendErrorCounter       prometheus.Counter
	dbLatency                      *prometheus.HistogramVec
)

func init() {
	newMetrics()
}

// Init registers the collectors and starts the metrics server.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// newMetrics builds the collectors. Recording works before Init, the values are
// just not exported until registration.
func newMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	// client requests are the ones sending to other service
	clientRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "client_request_duration_seconds",
			Help:    "Histogram of outgoing client request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"baseurl", "method", "path", "status"},
	)

	graphqlClientLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphql_client_latency_seconds",
			Help:    "Histogram of graphql client durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)

	refreshCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_total",
			Help: "Number of refresh attempts split by trigger and outcome",
		},
		[]string{"trigger", "status"},
	)

	fetchPagesHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fetch_pages",
			Help:    "Number of transfer pages read per window fetch",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		},
	)

	activeWalletsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_wallets",
			Help: "Distinct active wallets of the last refreshed day",
		},
	)

	newWalletsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "new_wallets",
			Help: "New wallets of the last refreshed day",
		},
	)

	extrinsicsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "extrinsics",
			Help: "Extrinsics count of the last refreshed day",
		},
	)

	certificationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certified_data_registrations_total",
			Help: "Number of root hash registrations with the certification authority",
		},
		[]string{"status"},
	)

	assetRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asset_requests_total",
			Help: "Number of asset requests split by normalized path and status code",
		},
		[]string{"path", "status"},
	)

	// add a counter for the number of errors from the fail to push message into queue
	notifierSendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_send_error_count",
			Help: "The total number of errors when publishing notifications",
		},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "db_latency_seconds",
			Help: "DB latency in seconds splitted by method and execution status",
		},
		[]string{"method", "status"},
	)
}

// registerMetrics registers the Prometheus metrics.
func registerMetrics() {
	prometheus.MustRegister(
		clientRequestDurationHistogram,
		graphqlClientLatency,
		pollerDurationHistogram,
		refreshCounter,
		fetchPagesHistogram,
		activeWalletsGauge,
		newWalletsGauge,
		extrinsicsGauge,
		certificationCounter,
		assetRequestCounter,
		notifierSendErrorCounter,
		dbLatency,
	)
}

func outcome(failure bool) Outcome {
	if failure {
		return Error
	}
	return Success
}

func RecordGraphQLClientLatency(d time.Duration, method string, failure bool) {
	graphqlClientLatency.WithLabelValues(method, outcome(failure).String()).Observe(d.Seconds())
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	dbLatency.WithLabelValues(method, outcome(failure).String()).Observe(d.Seconds())
}

func RecordRefresh(trigger string, status Outcome) {
	refreshCounter.WithLabelValues(trigger, status.String()).Inc()
}

func RecordFetchPages(pages int) {
	fetchPagesHistogram.Observe(float64(pages))
}

func RecordDailyMetrics(active, newWallets, extrinsics uint64) {
	activeWalletsGauge.Set(float64(active))
	newWalletsGauge.Set(float64(newWallets))
	extrinsicsGauge.Set(float64(extrinsics))
}

func RecordCertification(failure bool) {
	certificationCounter.WithLabelValues(outcome(failure).String()).Inc()
}

func RecordAssetRequest(path string, statusCode int) {
	assetRequestCounter.WithLabelValues(path, strconv.Itoa(statusCode)).Inc()
}

// StartClientRequestDurationTimer starts a timer to measure outgoing client request duration.
func StartClientRequestDurationTimer(baseUrl, method, path string) func(statusCode int) {
	startTime := time.Now()
	return func(statusCode int) {
		duration := time.Since(startTime).Seconds()
		clientRequestDurationHistogram.WithLabelValues(
			baseUrl,
			method,
			path,
			fmt.Sprintf("%d", statusCode),
		).Observe(duration)
	}
}

func RecordNotifierSendError() {
	notifierSendErrorCounter.Inc()
}
