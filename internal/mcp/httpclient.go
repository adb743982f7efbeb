package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lostmarbl3/f-ai/internal/models"
)

// HTTPClient implements DataSource by calling the FitTrack REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. The
// apiKey is sent as X-API-Key when non-empty.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) ListWorkouts(ctx context.Context, clientID string) ([]models.LoggedWorkout, error) {
	params := url.Values{}
	if clientID != "" {
		params.Set("client_id", clientID)
	}

	body, err := c.get(ctx, "/api/v1/workouts", params)
	if err != nil {
		return nil, err
	}

	var workouts []models.LoggedWorkout
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return workouts, nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, id uuid.UUID) (*models.LoggedWorkout, error) {
	body, err := c.get(ctx, "/api/v1/workouts/"+id.String(), nil)
	if err != nil {
		return nil, err
	}

	var w models.LoggedWorkout
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("httpclient: decode workout: %w", err)
	}
	return &w, nil
}

func (c *HTTPClient) GetSnapshot(ctx context.Context, clientID, programID string) (*models.InProgressWorkout, error) {
	params := url.Values{}
	params.Set("client_id", clientID)
	params.Set("program_id", programID)

	body, err := c.get(ctx, "/api/v1/in-progress", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		InProgress bool                      `json:"inProgress"`
		Snapshot   *models.InProgressWorkout `json:"snapshot"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode in-progress: %w", err)
	}
	if !resp.InProgress {
		return nil, nil
	}
	return resp.Snapshot, nil
}
