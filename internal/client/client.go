// Package client submits telemetry reports to a running stats service. It is
// what statsctl uses and doubles as a reference for game-side uploaders.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chronos-stats/internal/config"
	"chronos-stats/internal/constants"

	"github.com/valyala/fasthttp"
)

type StatsClient struct {
	baseURL string
	apiKey  string
	client  *fasthttp.Client
}

// StatusError is a non-2xx answer from the service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %d: %s", e.Code, e.Body)
}

// Retryable is true for 5xx answers; the service rolled back, so the same
// report can be sent again.
func (e *StatusError) Retryable() bool {
	return e.Code >= 500
}

type TrackResponse struct {
	Success  bool   `json:"success"`
	PlayerID int64  `json:"player_id"`
	ServerID *int64 `json:"server_id"`
	Message  string `json:"message"`
}

type SummaryResponse struct {
	Players    int64 `json:"players"`
	Servers    int64 `json:"servers"`
	Maps       int64 `json:"maps"`
	TotalKills int64 `json:"total_kills"`
}

func NewStatsClient(cfg *config.Config) *StatsClient {
	return New(cfg.APIURL, cfg.APIKey)
}

func New(baseURL, apiKey string) *StatsClient {
	return &StatsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         constants.ClientTimeout,
			WriteTimeout:        constants.ClientTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// SubmitReport posts a JSON transport body as-is.
func (c *StatsClient) SubmitReport(ctx context.Context, body []byte) (*TrackResponse, error) {
	return doRequest[TrackResponse](ctx, c, fasthttp.MethodPost, c.baseURL+"/api/track", body)
}

func (c *StatsClient) Summary(ctx context.Context) (*SummaryResponse, error) {
	return doRequest[SummaryResponse](ctx, c, fasthttp.MethodGet, c.baseURL+"/api/summary", nil)
}

func doRequest[T any](ctx context.Context, client *StatsClient, method, url string, body []byte) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}
	// checked by the fronting proxy, never by the stats service
	if client.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+client.apiKey)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.ClientTimeout)
	}
	if err := client.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode(), Body: strings.TrimSpace(string(resp.Body()))}
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}
