package rankingsapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/xcri/rankings/pkg/metrics"
)

type endpointKey struct{}

// withEndpoint labels the request context with a bounded endpoint name so
// that path parameters (dates, ids) do not explode metric cardinality.
func withEndpoint(ctx context.Context, endpoint string) context.Context {
	return context.WithValue(ctx, endpointKey{}, endpoint)
}

func endpointOf(r *http.Request) string {
	if v, ok := r.Context().Value(endpointKey{}).(string); ok {
		return v
	}
	return "other"
}

// metricsTransport records a request counter and latency per endpoint.
type metricsTransport struct {
	next http.RoundTripper
}

func (t *metricsTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(r)
	durationMs := float64(time.Since(start).Milliseconds())
	endpoint := endpointOf(r)

	if err != nil {
		metrics.RecordBackendRequest(endpoint, "error", durationMs)
		metrics.RecordErrorByComponent("rankingsapi", "transport")
		return nil, err
	}

	metrics.RecordBackendRequest(endpoint, strconv.Itoa(resp.StatusCode), durationMs)
	if resp.StatusCode >= http.StatusBadRequest {
		errorType := getErrorType(resp.StatusCode)
		metrics.RecordErrorByComponent("rankingsapi", errorType)
		metrics.RecordErrorByType(errorType, getErrorSeverity(resp.StatusCode))
	}
	return resp, nil
}

// getErrorType returns a standardized error type based on HTTP status code.
func getErrorType(statusCode int) string {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return "server_error"
	case statusCode == http.StatusTooManyRequests:
		return "rate_limit"
	case statusCode == http.StatusNotFound:
		return "not_found"
	case statusCode >= http.StatusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

// getErrorSeverity returns error severity based on HTTP status code.
func getErrorSeverity(statusCode int) string {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return "high"
	case statusCode >= http.StatusBadRequest:
		return "medium"
	default:
		return "low"
	}
}
