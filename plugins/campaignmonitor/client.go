package campaignmonitor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Campaign Monitor API v3.2 root.
const DefaultBaseURL = "https://api.createsend.com/api/v3.2"

const instrumentationName = "github.com/sflowg/campaignmonitor/plugins/campaignmonitor"

// Request is one call against the API. Path is relative to the base URL and
// must start with "/".
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Headers map[string]string
}

// APIError is the single error kind produced by the request executor.
type APIError struct {
	Method     string
	Path       string
	StatusCode int    // 0 when no response was received
	Code       int    // Campaign Monitor error code, when the body carried one
	Message    string // Campaign Monitor error message, or the transport failure
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("Campaign Monitor request %s %s failed: %s", e.Method, e.Path, e.Message)
	case e.Code != 0:
		return fmt.Sprintf("Campaign Monitor API error %d (code %d): %s", e.StatusCode, e.Code, e.Message)
	default:
		return fmt.Sprintf("Campaign Monitor API error %d: %s", e.StatusCode, e.Message)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// errorBody is the shape of Campaign Monitor error responses.
type errorBody struct {
	Code    int    `json:"Code"`
	Message string `json:"Message"`
}

// Client issues requests against the API. It holds no credentials.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	tracer  trace.Tracer
	metrics clientMetrics
}

type clientMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// newClientMetrics registers the request instruments on meter, falling back
// to no-op instruments when the provider rejects them.
func newClientMetrics(meter metric.Meter) clientMetrics {
	requests, err := meter.Int64Counter("campaignmonitor.requests",
		metric.WithDescription("Campaign Monitor API calls"))
	if err != nil {
		requests, _ = noop.Meter{}.Int64Counter("campaignmonitor.requests")
	}
	duration, err := meter.Float64Histogram("campaignmonitor.request.duration",
		metric.WithDescription("Campaign Monitor API call latency"),
		metric.WithUnit("s"))
	if err != nil {
		duration, _ = noop.Meter{}.Float64Histogram("campaignmonitor.request.duration")
	}
	return clientMetrics{requests: requests, duration: duration}
}

func NewClient(cfg Config) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	// No retries: a failed call is reported, never reattempted.
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetDebug(cfg.Debug)
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	return &Client{
		http:    client,
		limiter: rate.NewLimiter(limit, burst),
		tracer:  otel.Tracer(instrumentationName),
		metrics: newClientMetrics(otel.Meter(instrumentationName)),
	}
}

// Do signs and sends req and returns the decoded JSON body. An empty 2xx body
// decodes to nil.
func (c *Client) Do(ctx context.Context, apiKey string, req Request) (result any, err error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "campaignmonitor.request", trace.WithAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("campaignmonitor.endpoint", req.Path),
	))
	start := time.Now()
	status := 0
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		attrs := metric.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.Int("http.response.status_code", status),
			attribute.Bool("error", err != nil),
		)
		c.metrics.requests.Add(ctx, 1, attrs)
		c.metrics.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &APIError{Method: req.Method, Path: req.Path, Message: fmt.Sprintf("rate limiter: %v", err), Err: err}
	}

	r := c.http.R().SetContext(ctx)
	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}
	r.SetHeader("Authorization", BasicAuthHeader(apiKey))

	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, &APIError{Method: req.Method, Path: req.Path, Message: err.Error(), Err: err}
	}
	if body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		return nil, &APIError{Method: req.Method, Path: req.Path, Message: err.Error(), Err: err}
	}
	status = resp.StatusCode()
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	raw := bytes.TrimSpace(resp.Body())
	if !resp.IsSuccess() {
		return nil, newStatusError(req, status, raw)
	}

	if len(raw) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &APIError{
			Method:     req.Method,
			Path:       req.Path,
			StatusCode: status,
			Message:    fmt.Sprintf("malformed JSON response: %v", err),
			Err:        err,
		}
	}
	return result, nil
}

func newStatusError(req Request, status int, raw []byte) *APIError {
	apiErr := &APIError{Method: req.Method, Path: req.Path, StatusCode: status}

	var body errorBody
	if len(raw) > 0 && json.Unmarshal(raw, &body) == nil && body.Message != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		return apiErr
	}

	apiErr.Message = http.StatusText(status)
	if len(raw) > 0 {
		apiErr.Message += ": " + truncate(string(raw), 200)
	}
	return apiErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func validateRequest(req Request) error {
	switch req.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return &APIError{Method: req.Method, Path: req.Path, Message: "unsupported HTTP method"}
	}
	if !strings.HasPrefix(req.Path, "/") {
		return &APIError{Method: req.Method, Path: req.Path, Message: "endpoint must start with /"}
	}
	return nil
}

// encodeBody serialises body as JSON. Empty bodies ({}, [], null, "") yield
// nil so nothing is put on the wire.
func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	switch string(data) {
	case "{}", "[]", "null", `""`:
		return nil, nil
	}
	return data, nil
}
