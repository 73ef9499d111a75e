package bookstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"

	apierrors "github.com/Apurer/go-gin-bookstore/internal/shared/errors"
)

// Client calls the operator endpoints of a running Bookstore API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient instantiates the client with sane defaults.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("bookstore base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

type releaseResult struct {
	Released int `json:"released"`
}

// ReleaseIdleCarts asks the API to release carts idle for at least idleFor and
// returns how many carts were released. Whole minutes are sent; zero lets the server pick.
func (c *Client) ReleaseIdleCarts(ctx context.Context, idleFor time.Duration) (int, error) {
	if c == nil || c.httpClient == nil {
		return 0, errors.New("bookstore client not configured")
	}
	target := c.baseURL + "/v1/admin/carts/release-idle"
	if minutes := int(idleFor / time.Minute); minutes > 0 {
		query, err := runtime.StyleParamWithLocation("form", true, "idleMinutes", runtime.ParamLocationQuery, minutes)
		if err != nil {
			return 0, fmt.Errorf("encode idleMinutes: %w", err)
		}
		target += "?" + query
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, nil)
	if err != nil {
		return 0, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call bookstore API: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return 0, decodeProblem(res)
	}
	var body releaseResult
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode release response: %w", err)
	}
	return body.Released, nil
}

func decodeProblem(res *http.Response) error {
	var problem apierrors.ProblemDetail
	if err := json.NewDecoder(res.Body).Decode(&problem); err != nil || problem.Title == "" {
		return fmt.Errorf("bookstore API error: %s", res.Status)
	}
	if problem.Status == 0 {
		problem.Status = res.StatusCode
	}
	return problem
}
