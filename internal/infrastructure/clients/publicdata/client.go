package publicdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/zatekoja/carefinder/backend/internal/domain/entities"
	"github.com/zatekoja/carefinder/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/carefinder/backend/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

const (
	FormatXML  = "xml"
	FormatJSON = "json"

	maxBodyBytes = 8 << 20
)

// Request describes one call to a public-data endpoint
type Request struct {
	// Feed names the feed in logs, metrics and error messages.
	Feed       string
	Endpoint   string
	ServiceKey string
	Params     url.Values
}

// Client performs single-attempt GET calls against public-data endpoints and
// normalizes the response into feed items.
type Client struct {
	httpClient *http.Client
	format     string
	metrics    *observability.Metrics
}

// NewClient creates a public-data client. A zero timeout falls back to 5 seconds.
func NewClient(timeout time.Duration, format string, metrics *observability.Metrics) *Client {
	return NewClientWithHTTP(&http.Client{Timeout: timeoutOrDefault(timeout)}, format, metrics)
}

// NewClientWithHTTP allows overriding the HTTP client (used for tests).
func NewClientWithHTTP(httpClient *http.Client, format string, metrics *observability.Metrics) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeoutOrDefault(0)}
	}
	if format != FormatJSON {
		format = FormatXML
	}
	return &Client{
		httpClient: httpClient,
		format:     format,
		metrics:    metrics,
	}
}

// FetchItems calls the endpoint once and returns its normalized items. Every
// failure is returned as an EXTERNAL AppError.
func (c *Client) FetchItems(ctx context.Context, req Request) ([]entities.RawFeedItem, error) {
	ctx, span := observability.StartSpan(ctx, "publicdata."+req.Feed)
	defer span.End()
	logger := observability.LoggerFromContext(ctx)

	endpoint, err := c.buildURL(req)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewInternalError(fmt.Sprintf("%s feed endpoint is invalid", req.Feed), err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to build %s feed request", req.Feed), err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		observability.RecordFeedMetric(ctx, c.metrics, req.Feed, 0, time.Since(start), err)
		observability.RecordError(span, err)
		logger.Warn().Err(err).Str("feed", req.Feed).Msg("feed request failed")
		return nil, apperrors.NewExternalError(fmt.Sprintf("%s feed is unreachable", req.Feed), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		observability.RecordFeedMetric(ctx, c.metrics, req.Feed, resp.StatusCode, time.Since(start), err)
		observability.RecordError(span, err)
		return nil, apperrors.NewExternalError(fmt.Sprintf("failed to read %s feed response", req.Feed), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("status %d", resp.StatusCode)
		observability.RecordFeedMetric(ctx, c.metrics, req.Feed, resp.StatusCode, time.Since(start), statusErr)
		observability.RecordError(span, statusErr)
		logger.Warn().Int("status", resp.StatusCode).Str("feed", req.Feed).Msg("feed returned non-2xx status")
		return nil, apperrors.NewExternalError(
			fmt.Sprintf("%s feed returned status %d: %s", req.Feed, resp.StatusCode, diagnostic(body)), statusErr)
	}

	var items []entities.RawFeedItem
	if c.format == FormatJSON {
		items, err = DecodeJSON(body)
	} else {
		items, err = DecodeXML(body)
	}
	observability.RecordFeedMetric(ctx, c.metrics, req.Feed, resp.StatusCode, time.Since(start), err)
	if err != nil {
		observability.RecordError(span, err)
		logger.Warn().Err(err).Str("feed", req.Feed).Msg("feed response could not be decoded")
		return nil, apperrors.NewExternalError(feedErrorMessage(req.Feed, err), err)
	}

	observability.SetSpanAttributes(span, attribute.Int("feed.items", len(items)))
	return items, nil
}

func (c *Client) buildURL(req Request) (string, error) {
	parsed, err := url.Parse(req.Endpoint)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("endpoint %q must be absolute", req.Endpoint)
	}

	query := parsed.Query()
	for key, values := range req.Params {
		for _, v := range values {
			if v != "" {
				query.Add(key, v)
			}
		}
	}
	if req.ServiceKey != "" {
		query.Set("serviceKey", req.ServiceKey)
	}
	if c.format == FormatJSON {
		query.Set("_type", "json")
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func feedErrorMessage(feed string, err error) string {
	switch {
	case errors.Is(err, ErrFeedRejected):
		return fmt.Sprintf("%s feed rejected the request: %v", feed, err)
	default:
		return fmt.Sprintf("%s feed returned an unreadable response: %v", feed, err)
	}
}

func timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 5 * time.Second
	}
	return timeout
}
