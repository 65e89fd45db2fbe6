package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"retreat-booking/pkg/metrics"
	"retreat-booking/pkg/utils"

	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

// client holds what both flows share: credentials, base URL and transport.
type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	tripID     string
	log        *zap.Logger
}

func newClient(cfg utils.WeTravelConfig, httpClient *http.Client, log *zap.Logger) *client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		tripID:     cfg.TripID,
		log:        log,
	}
}

// tripURL returns {base}/trips/{trip}/{resource}
func (c *client) tripURL(resource string) string {
	return fmt.Sprintf("%s/trips/%s/%s", c.baseURL, url.PathEscape(c.tripID), resource)
}

// post sends payload as JSON and returns the body of a 2xx response. Any
// other status yields a *ProviderError with the upstream body.
func (c *client) post(ctx context.Context, flow, endpoint string, payload any, idempotencyKey string) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", flow, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", flow, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ProviderRequestDuration.WithLabelValues(flow).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(flow, "transport_error").Inc()
		c.log.Error("WeTravel request failed",
			zap.String("flow", flow),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s request: %w", flow, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(flow, "transport_error").Inc()
		return nil, fmt.Errorf("read %s response: %w", flow, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ProviderRequests.WithLabelValues(flow, "rejected").Inc()
		c.log.Error("WeTravel API error",
			zap.String("flow", flow),
			zap.Int("status", resp.StatusCode),
			zap.String("body", Scrub(string(respBody), c.apiKey)),
		)
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	metrics.ProviderRequests.WithLabelValues(flow, "ok").Inc()
	return respBody, nil
}
