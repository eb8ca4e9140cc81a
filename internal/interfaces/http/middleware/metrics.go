package middleware

import (
	"net/http"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// body size buckets, 100B up to the 5MB ceiling of a receipt PDF
var bodySizeBuckets = []float64{100, 1e3, 1e4, 5e4, 1e5, 5e5, 1e6, 5e6}

type httpInstruments struct {
	requests *telemetry.Counter
	latency  *telemetry.Histogram
	reqBody  *telemetry.Histogram
	respBody *telemetry.Histogram
	inFlight metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		in  httpInstruments
		err error
	)
	if in.requests, err = telemetry.NewCounter(meter,
		"http_server_request_total", "HTTP requests served", "{request}"); err != nil {
		return nil, err
	}
	if in.latency, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "http_server_request_duration_seconds", Description: "HTTP request latency",
		Unit: "s", Boundaries: telemetry.DurationBuckets,
	}); err != nil {
		return nil, err
	}
	if in.reqBody, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "http_server_request_size_bytes", Description: "HTTP request body size",
		Unit: "By", Boundaries: bodySizeBuckets,
	}); err != nil {
		return nil, err
	}
	if in.respBody, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "http_server_response_size_bytes", Description: "HTTP response body size",
		Unit: "By", Boundaries: bodySizeBuckets,
	}); err != nil {
		return nil, err
	}
	if in.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests in progress"),
		metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	return &in, nil
}

// HTTPMetrics counts requests per route and status class and records
// their latency and body sizes. Disabled, or with instruments that cannot
// be created, it does nothing.
func HTTPMetrics(meter metric.Meter, enabled bool) gin.HandlerFunc {
	if !enabled || meter == nil {
		return passThrough
	}
	in, err := newHTTPInstruments(meter)
	if err != nil {
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		in.inFlight.Add(ctx, 1)
		defer in.inFlight.Add(ctx, -1)

		c.Next()

		// latency and sizes carry only method and route, status would
		// multiply the series
		attrs := []attribute.KeyValue{
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(routePattern(c)),
		}
		status := c.Writer.Status()
		in.requests.Inc(ctx, append(attrs,
			telemetry.AttrHTTPStatusCode.Int(status),
			attribute.String("http.status_class", StatusClass(status)),
		)...)
		in.latency.RecordDuration(ctx, time.Since(start), attrs...)
		if n := c.Request.ContentLength; n > 0 {
			in.reqBody.Record(ctx, float64(n), attrs...)
		}
		if n := c.Writer.Size(); n > 0 {
			in.respBody.Record(ctx, float64(n), attrs...)
		}
	}
}

func passThrough(c *gin.Context) {
	c.Next()
}

// routePattern is the matched route template such as
// /api/v1/estates/:id, never the raw path
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

// StatusClass buckets a status code as 2xx, 3xx, 4xx or 5xx
func StatusClass(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "5xx"
	case status >= http.StatusBadRequest:
		return "4xx"
	case status >= http.StatusMultipleChoices:
		return "3xx"
	case status >= http.StatusOK:
		return "2xx"
	}
	return "other"
}
