// Package gateway is the dashboard's HTTP/JSON client for the gym REST API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
)

// Observer receives timing for every upstream call.
type Observer interface {
	ObserveGatewayCall(resource, method string, status int, duration time.Duration)
}

type tokenKey struct{}

// WithToken attaches the caller's bearer token to ctx for upstream calls.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the bearer token attached by WithToken.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client issues authenticated requests against the gym REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   Observer
	logger     *zap.Logger
}

// NewClient creates a client targeting baseURL (e.g. "http://localhost:3001/api").
func NewClient(baseURL string, timeout time.Duration, observer Observer, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		observer:   observer,
		logger:     logger,
	}
}

// ListQuery is the criteria and page window sent with a list call.
type ListQuery struct {
	Search  string
	Filters map[string]string
	Page    int
	PerPage int
}

// Values encodes the query as URL parameters. Empty filters are omitted.
func (q ListQuery) Values() url.Values {
	values := url.Values{}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	for key, value := range q.Filters {
		if value != "" {
			values.Set(key, value)
		}
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return values
}

// ListResult is one page of records as returned by the backend.
type ListResult[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// GymSettings loads the gym's profile, including its timezone.
func (c *Client) GymSettings(ctx context.Context, gymID int64) (*models.GymSettings, error) {
	var settings models.GymSettings
	path := "/gyms/" + strconv.FormatInt(gymID, 10) + "/settings"
	if err := c.doJSON(ctx, "gyms", http.MethodGet, path, nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// errorBody covers the error shapes the backend emits:
// {"error":{"code":..,"message":..}}, {"error":"..","code":".."} and {"message":".."}.
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

func parseErrorBody(raw []byte) (code, message string) {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", strings.TrimSpace(string(raw))
	}
	code, message = body.Code, body.Message
	if len(body.Error) == 0 {
		return code, message
	}
	var nested struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body.Error, &nested) == nil && (nested.Code != "" || nested.Message != "") {
		return nested.Code, nested.Message
	}
	var text string
	if json.Unmarshal(body.Error, &text) == nil && text != "" {
		message = text
	}
	return code, message
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// Every failure is returned as a classified *appErrors.Error.
func (c *Client) doJSON(ctx context.Context, resource, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.KindValidationFailed, http.StatusBadRequest, "request payload could not be encoded")
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return appErrors.Transport(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(resource, method, 0, time.Since(start))
		c.logger.Warn("gateway request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return appErrors.Transport(fmt.Errorf("performing request: %w", err))
	}
	defer resp.Body.Close()
	c.observe(resource, method, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return appErrors.Transport(fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode >= 400 {
		code, message := parseErrorBody(respBody)
		c.logger.Debug("gateway error response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("code", code),
		)
		return appErrors.FromStatus(resp.StatusCode, code, message)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return appErrors.Transport(fmt.Errorf("decoding response: %w", err))
		}
	}

	return nil
}

func (c *Client) observe(resource, method string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveGatewayCall(resource, method, status, d)
	}
}
