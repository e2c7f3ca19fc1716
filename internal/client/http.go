// Package client talks to the CRM REST API and keeps the local view state a
// front end needs: the login session, per-view caches and the kanban board.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"propertystore/internal/models"
)

// ErrUnauthorized is matched by every APIError with status 401.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// HTTPClient is a typed client for the /api endpoints.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client

	mu             sync.RWMutex
	token          string
	onUnauthorized func()
}

// NewHTTPClient targets baseURL (e.g. "http://localhost:8080"). A zero
// timeout means no limit.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetToken sets the bearer token sent with every request. Empty disables it.
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// OnUnauthorized registers fn to run whenever the server answers 401.
func (c *HTTPClient) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

// --- auth ---

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	body := models.LoginRequest{Username: username, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ClientLogin(ctx context.Context, login, password string) (*models.ClientAuthResponse, error) {
	var out models.ClientAuthResponse
	body := models.ClientLoginRequest{Login: login, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/client/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- pipelines ---

func (c *HTTPClient) Pipelines(ctx context.Context) ([]models.Pipeline, error) {
	var out []models.Pipeline
	if err := c.doJSON(ctx, http.MethodGet, "/api/pipelines", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Stages returns the stages of a pipeline as the server orders them.
func (c *HTTPClient) Stages(ctx context.Context, pipelineID string) ([]models.DealStage, error) {
	var out []models.DealStage
	if err := c.doJSON(ctx, http.MethodGet, "/api/dealstages/pipeline/"+url.PathEscape(pipelineID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- deals ---

// DealQuery narrows ListDeals. Empty fields are not sent.
type DealQuery struct {
	PipelineID string
	ClientID   string
	StageID    string
	ActiveOnly bool
	From       *time.Time
	To         *time.Time
	Page       int
	Size       int
}

func (q DealQuery) values() url.Values {
	v := url.Values{}
	if q.PipelineID != "" {
		v.Set("pipelineId", q.PipelineID)
	}
	if q.ClientID != "" {
		v.Set("clientId", q.ClientID)
	}
	if q.StageID != "" {
		v.Set("stageId", q.StageID)
	}
	if q.ActiveOnly {
		v.Set("active", "true")
	}
	if q.From != nil {
		v.Set("from", q.From.UTC().Format(time.RFC3339))
	}
	if q.To != nil {
		v.Set("to", q.To.UTC().Format(time.RFC3339))
	}
	if q.Page > 0 {
		v.Set("page", fmt.Sprintf("%d", q.Page))
	}
	if q.Size > 0 {
		v.Set("size", fmt.Sprintf("%d", q.Size))
	}
	return v
}

func (c *HTTPClient) ListDeals(ctx context.Context, q DealQuery) ([]models.Deal, error) {
	path := "/api/deals"
	if v := q.values(); len(v) > 0 {
		path += "?" + v.Encode()
	}
	var out []models.Deal
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ActiveDeals(ctx context.Context) ([]models.Deal, error) {
	var out []models.Deal
	if err := c.doJSON(ctx, http.MethodGet, "/api/deals/active", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) PipelineDeals(ctx context.Context, pipelineID string) ([]models.Deal, error) {
	var out []models.Deal
	if err := c.doJSON(ctx, http.MethodGet, "/api/deals/pipeline/"+url.PathEscape(pipelineID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Deal returns a deal with its client, current stage and history.
func (c *HTTPClient) Deal(ctx context.Context, id string) (*models.Deal, error) {
	var out models.Deal
	if err := c.doJSON(ctx, http.MethodGet, "/api/deals/"+url.PathEscape(id)+"/with-details", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateDeal(ctx context.Context, req models.DealRequest) (*models.Deal, error) {
	var out models.Deal
	if err := c.doJSON(ctx, http.MethodPost, "/api/deals", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) MoveStage(ctx context.Context, dealID, stageID string, note *string) (*models.Deal, error) {
	var out models.Deal
	body := models.MoveDealStageRequest{NewStageID: stageID, Notes: note}
	if err := c.doJSON(ctx, http.MethodPut, "/api/deals/"+url.PathEscape(dealID)+"/move-stage", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CloseDeal(ctx context.Context, id string) (*models.Deal, error) {
	var out models.Deal
	if err := c.doJSON(ctx, http.MethodPut, "/api/deals/"+url.PathEscape(id)+"/close", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- analytics ---

func (c *HTTPClient) PipelineAnalytics(ctx context.Context, pipelineID string) (*models.DealAnalytics, error) {
	var out models.DealAnalytics
	if err := c.doJSON(ctx, http.MethodGet, "/api/deals/pipeline/"+url.PathEscape(pipelineID)+"/analytics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Funnel(ctx context.Context, pipelineID string) ([]models.FunnelStage, error) {
	var out []models.FunnelStage
	if err := c.doJSON(ctx, http.MethodGet, "/api/deals/pipeline/"+url.PathEscape(pipelineID)+"/funnel", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Trend asks for the daily created/completed series. from and to are only
// used with the "custom" period.
func (c *HTTPClient) Trend(ctx context.Context, period string, from, to *time.Time) ([]models.TrendPoint, error) {
	v := url.Values{}
	if period != "" {
		v.Set("period", period)
	}
	if from != nil {
		v.Set("from", from.Format("2006-01-02"))
	}
	if to != nil {
		v.Set("to", to.Format("2006-01-02"))
	}
	path := "/api/deals/trend"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var out []models.TrendPoint
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- requests ---

func (c *HTTPClient) Requests(ctx context.Context, status string) ([]models.Request, error) {
	path := "/api/Requests"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var out []models.Request
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus) (*models.Request, error) {
	var out models.Request
	body := map[string]string{"status": string(status)}
	if err := c.doJSON(ctx, http.MethodPut, "/api/Requests/"+url.PathEscape(id)+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) PromoteRequest(ctx context.Context, id string, req models.PromoteRequest) (*models.Deal, error) {
	var out models.Deal
	if err := c.doJSON(ctx, http.MethodPost, "/api/Requests/"+url.PathEscape(id)+"/promote", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- helpers ---

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// one key per submission, the server replays a repeated one
	if method != http.MethodGet {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	c.mu.RLock()
	token, onUnauthorized := c.token, c.onUnauthorized
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized && onUnauthorized != nil {
			onUnauthorized()
		}
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
