package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success Outcome = "success"
	Error   Outcome = "error"
)

func (O Outcome) String() string {
	return string(O)
}

var defaultHistogramBucketsSeconds = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

// Collectors exist before Init so that callers never see a nil metric; Init
// only registers them and starts serving.
var (
	once          sync.Once
	metricsRouter *chi.Mux

	httpRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of http request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"endpoint", "status"},
	)
	processFuncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "process_func_duration_seconds",
			Help:    "Histogram of queue handler and background job durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"function", "outcome"},
	)
	clientRequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "client_request_latency_seconds",
			Help:    "Histogram of outbound client request latencies in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"baseurl", "method", "status"},
	)
	hubOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_operations_total",
			Help: "Count of ledger operations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	hubInstructionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_instructions_total",
			Help: "Count of instructions emitted by the ledger, by type.",
		},
		[]string{"type"},
	)
	closedBatchesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_closed_batches_total",
			Help: "Count of unbond batches closed.",
		},
	)
	settledBatchesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_settled_batches_total",
			Help: "Count of unbond batches released for withdrawal.",
		},
	)
	ledgerGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hub_ledger_value",
			Help: "Ledger state values: exchange_rate, total_bonded and current_batch_requested.",
		},
		[]string{"field"},
	)
	pendingOutboxGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_outbox_pending",
			Help: "Number of instruction batches waiting to be relayed in the last relay run.",
		},
	)
)

// Init initializes the metrics package.
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

	go func() {
		metricsAddr := fmt.Sprintf(":%d", metricsPort)
		err := http.ListenAndServe(metricsAddr, metricsRouter)
		if err != nil {
			log.Fatal().Err(err).Msgf("error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics registers the Prometheus metrics.
func registerMetrics() {
	prometheus.MustRegister(
		httpRequestDurationHistogram,
		processFuncDuration,
		clientRequestLatency,
		hubOperationCounter,
		hubInstructionCounter,
		closedBatchesCounter,
		settledBatchesCounter,
		ledgerGauge,
		pendingOutboxGauge,
	)
}

// StartHttpRequestDurationTimer starts a timer to measure http request handling duration.
func StartHttpRequestDurationTimer(endpoint string) func(statusCode int) {
	startTime := time.Now()
	return func(statusCode int) {
		duration := time.Since(startTime).Seconds()
		httpRequestDurationHistogram.WithLabelValues(endpoint, fmt.Sprintf("%d", statusCode)).Observe(duration)
	}
}

// StartProcessFuncTimer starts a timer for a queue handler or a background job.
func StartProcessFuncTimer(function string) func(outcome Outcome) {
	startTime := time.Now()
	return func(outcome Outcome) {
		processFuncDuration.WithLabelValues(function, outcome.String()).Observe(time.Since(startTime).Seconds())
	}
}

// StartClientRequestDurationTimer starts a timer for an outbound client request.
func StartClientRequestDurationTimer(baseUrl, method string) func(statusCode int) {
	startTime := time.Now()
	return func(statusCode int) {
		clientRequestLatency.WithLabelValues(baseUrl, method, fmt.Sprintf("%d", statusCode)).
			Observe(time.Since(startTime).Seconds())
	}
}

func RecordHubOperation(operation string, outcome Outcome) {
	hubOperationCounter.WithLabelValues(operation, outcome.String()).Inc()
}

func RecordInstruction(instructionType string) {
	hubInstructionCounter.WithLabelValues(instructionType).Inc()
}

func RecordClosedBatch() {
	closedBatchesCounter.Inc()
}

func RecordSettledBatches(count int) {
	settledBatchesCounter.Add(float64(count))
}

func SetLedgerState(exchangeRate, totalBonded, currentBatchRequested float64) {
	ledgerGauge.WithLabelValues("exchange_rate").Set(exchangeRate)
	ledgerGauge.WithLabelValues("total_bonded").Set(totalBonded)
	ledgerGauge.WithLabelValues("current_batch_requested").Set(currentBatchRequested)
}

func SetPendingOutbox(count int) {
	pendingOutboxGauge.Set(float64(count))
}
