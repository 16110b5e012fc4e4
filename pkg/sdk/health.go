package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HealthStatus represents the aggregated server health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok" or "degraded"
	Checks map[string]string `json:"checks"` // component -> "ok"/"error"
}

// Health checks server health. A degraded server answers 503 but still
// reports per-component checks; that is returned as a status, not an error.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("sdk: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("sdk: GET /health: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return HealthStatus{}, &APIError{
			Status:  resp.StatusCode,
			Code:    "unknown",
			Message: "health check failed",
		}
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return HealthStatus{}, fmt.Errorf("sdk: decode response: %w", err)
	}
	return status, nil
}
