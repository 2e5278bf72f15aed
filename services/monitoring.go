package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lac-hong-legacy/learnhub/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	MONITORING_SVC          = "monitoring_svc"
	SERVICE_NAME            = "learnhub"
	DEFAULT_PROMETHEUS_PORT = 2112
)

// HTTP Metrics
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	httpRequestsSuccessfulTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_successful_total",
			Help: "Total successful HTTP requests (2xx status codes)",
		},
		[]string{"endpoint", "method"},
	)

	httpRequestsFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_failed_total",
			Help: "Total failed HTTP requests (4xx, 5xx status codes)",
		},
		[]string{"endpoint", "method"},
	)

	httpRequestsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_active",
			Help: "Number of active concurrent HTTP requests",
		},
		[]string{"endpoint", "method"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint", "method", "status"},
	)

	httpResponseSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response payload size in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
		},
		[]string{"endpoint", "method"},
	)
)

// Domain Metrics
var (
	progressEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnhub_progress_events_total",
			Help: "Recorded progress events by resulting lesson status",
		},
		[]string{"status"},
	)

	hydrationRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "learnhub_hydration_runs_total",
			Help: "Content hydration passes",
		},
	)

	hydrationMissingTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "learnhub_hydration_missing_total",
			Help: "Local lessons whose content was absent at hydration time",
		},
	)

	contentHandlesLive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "learnhub_content_handles_live",
			Help: "Content handles currently live",
		},
	)

	contentHandlesAcquiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "learnhub_content_handles_acquired_total",
			Help: "Content handles minted",
		},
	)

	contentHandlesReleasedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "learnhub_content_handles_released_total",
			Help: "Content handles released",
		},
	)

	blobOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnhub_blob_operations_total",
			Help: "Blob store operations by outcome",
		},
		[]string{"op", "result"},
	)

	cascadeCleanupFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "learnhub_cascade_cleanup_failures_total",
			Help: "Blob deletions that failed after a structural delete",
		},
	)
)

// recordBlobOp counts one blob store call.
func recordBlobOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	blobOperationsTotal.WithLabelValues(op, result).Inc()
}

type MonitoringService struct {
	appContext.DefaultService

	port     int
	register *prometheus.Registry
	server   *fiber.App
}

func (svc MonitoringService) Id() string {
	return MONITORING_SVC
}

func (svc *MonitoringService) Configure(ctx *appContext.Context) error {
	portStr := os.Getenv("PROMETHEUS_PORT")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = DEFAULT_PROMETHEUS_PORT
	}
	svc.port = port

	return svc.DefaultService.Configure(ctx)
}

func (svc *MonitoringService) Start() error {
	if svc.port == 0 {
		svc.port = DEFAULT_PROMETHEUS_PORT
	}

	svc.register = newMonitoringRegistry()

	svc.initializeMetrics()

	config := fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		},
	}

	svc.server = fiber.New(config)
	svc.server.Use(recover.New())

	svc.server.Get("/metrics", svc.metricsHandler)
	svc.server.Get("/health", svc.healthHandler)

	// The API server owns the blocking Start; metrics listen alongside it.
	go func() {
		if err := svc.server.Listen(fmt.Sprintf(":%v", svc.port)); err != nil {
			log.Error().Err(err).Msg("Prometheus metrics server stopped")
		}
	}()

	log.Info().Int("port", svc.port).Msg("Prometheus metrics server started")
	return nil
}

// newMonitoringRegistry builds the private registry with the runtime collectors and every
// learnhub metric.
func newMonitoringRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()

	// Go runtime and process collectors cover heap, GC and memory
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Register custom metrics
	reg.MustRegister(
		httpRequestsTotal,
		httpRequestsSuccessfulTotal,
		httpRequestsFailedTotal,
		httpRequestsActive,
		httpRequestDurationSeconds,
		httpResponseSizeBytes,
		progressEventsTotal,
		hydrationRunsTotal,
		hydrationMissingTotal,
		contentHandlesLive,
		contentHandlesAcquiredTotal,
		contentHandlesReleasedTotal,
		blobOperationsTotal,
		cascadeCleanupFailuresTotal,
	)

	return reg
}

func (svc *MonitoringService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// Registry exposes the private registry, mainly for tests.
func (svc *MonitoringService) Registry() *prometheus.Registry {
	return svc.register
}

func (svc *MonitoringService) metricsHandler(c *fiber.Ctx) error {
	handler := promhttp.HandlerFor(svc.register, promhttp.HandlerOpts{})
	return adaptor.HTTPHandler(handler)(c)
}

func (svc *MonitoringService) healthHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"service":   SERVICE_NAME,
		"timestamp": time.Now().Unix(),
	})
}

func (svc *MonitoringService) initializeMetrics() {
	// Initialize HTTP metrics with zero values
	httpRequestsTotal.WithLabelValues("/health", "GET", "200").Add(0)
	httpRequestsSuccessfulTotal.WithLabelValues("/health", "GET").Add(0)
	httpRequestsActive.WithLabelValues("/health", "GET").Set(0)
	httpRequestDurationSeconds.WithLabelValues("/health", "GET", "200").Observe(0)
	httpResponseSizeBytes.WithLabelValues("/health", "GET").Observe(0)

	for _, status := range []string{model.StatusNotStarted, model.StatusStarted, model.StatusCompleted} {
		progressEventsTotal.WithLabelValues(status).Add(0)
	}

	log.Info().Msg("Metrics initialized successfully")
}

// RecordRequest records HTTP request metrics
func (svc *MonitoringService) RecordRequest(method, endpoint, status string, duration time.Duration, responseSize int) {
	httpRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
	httpRequestDurationSeconds.WithLabelValues(endpoint, method, status).Observe(duration.Seconds())
	httpResponseSizeBytes.WithLabelValues(endpoint, method).Observe(float64(responseSize))

	statusCode, _ := strconv.Atoi(status)
	if statusCode >= 200 && statusCode < 400 {
		httpRequestsSuccessfulTotal.WithLabelValues(endpoint, method).Inc()
	} else if statusCode >= 400 {
		httpRequestsFailedTotal.WithLabelValues(endpoint, method).Inc()
	}
}

// IncrementActiveRequests increments the active requests gauge
func (svc *MonitoringService) IncrementActiveRequests(endpoint, method string) {
	httpRequestsActive.WithLabelValues(endpoint, method).Inc()
}

// DecrementActiveRequests decrements the active requests gauge
func (svc *MonitoringService) DecrementActiveRequests(endpoint, method string) {
	httpRequestsActive.WithLabelValues(endpoint, method).Dec()
}

// MonitoringMiddleware creates a Fiber middleware for monitoring HTTP requests
func MonitoringMiddleware(monitoringSvc *MonitoringService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Skip metrics endpoint
		if c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		method := c.Method()
		active := c.Route().Path

		monitoringSvc.IncrementActiveRequests(active, method)
		defer monitoringSvc.DecrementActiveRequests(active, method)

		// Render errors here so the recorded status is the one the client sees.
		if err := c.Next(); err != nil {
			if handlerErr := c.App().Config().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		// The matched route pattern is only known once the chain has run.
		endpoint := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())
		monitoringSvc.RecordRequest(method, endpoint, status, time.Since(start), len(c.Response().Body()))

		return nil
	}
}
