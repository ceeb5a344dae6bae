// Package sdapi provides a client for the school-data REST API.
package sdapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/sims/internal/model"
	"github.com/theirongolddev/sims/internal/validate"
	"github.com/theirongolddev/sims/internal/wire"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
	userAgent      = "github.com/theirongolddev/sims/1.0"

	// learnerDataset is the dataset the learner roster is served from.
	learnerDataset = "2023_data"
)

var (
	// ErrNotFound indicates a 404. For the budget existence check this is the
	// only response that means "no budget yet".
	ErrNotFound = errors.New("sdapi: not found")
	// ErrUnauthorized indicates the token is missing, expired or lacks access.
	ErrUnauthorized = errors.New("sdapi: unauthorized")
	// ErrRateLimited indicates the API rate limit was hit.
	ErrRateLimited = errors.New("sdapi: rate limited")
	// ErrNoBaseURL is returned by NewClient when no API URL is configured.
	ErrNoBaseURL = errors.New("sdapi: base URL not configured")
)

// StatusError is returned for any other non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sdapi: %s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// IsObjectID reports whether s looks like a 24-hex-character document id
// rather than a school code.
func IsObjectID(s string) bool {
	return objectIDPattern.MatchString(s)
}

// Client talks to the school-data backend.
type Client struct {
	baseURL *url.URL
	token   string
	timeout time.Duration
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("sdapi: parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("sdapi: base URL must be http(s), got %q", baseURL)
	}

	c := &Client{
		baseURL: u,
		token:   strings.TrimSpace(token),
		timeout: defaultTimeout,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchBudgetCodes returns the budget and revenue category taxonomy.
func (c *Client) FetchBudgetCodes(ctx context.Context) ([]model.BudgetCode, error) {
	var codes []model.BudgetCode
	if err := c.do(ctx, http.MethodGet, "budget-codes", nil, &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// FetchBudget returns the budget of a school for a year. A missing budget
// yields ErrNotFound.
func (c *Client) FetchBudget(ctx context.Context, code string, year int) (*wire.Payload, error) {
	path := "budget/code/" + url.PathEscape(code) + "/" + strconv.Itoa(year)
	var p wire.Payload
	if err := c.do(ctx, http.MethodGet, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateBudget posts a new budget and returns the id assigned by the server.
func (c *Client) CreateBudget(ctx context.Context, p wire.Payload) (string, error) {
	if err := validate.Struct(p); err != nil {
		return "", err
	}
	var created struct {
		ID string `json:"_id"`
	}
	if err := c.do(ctx, http.MethodPost, "budget", p, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// UpdateBudget replaces an existing budget.
func (c *Client) UpdateBudget(ctx context.Context, id string, p wire.Payload) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("sdapi: budget id is required for update")
	}
	if err := validate.Struct(p); err != nil {
		return err
	}
	p.ID = ""
	return c.do(ctx, http.MethodPatch, "budget/"+url.PathEscape(id), p, nil)
}

// FetchSchool returns a school profile by document id or by school code.
func (c *Client) FetchSchool(ctx context.Context, identifier string) (*model.School, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, errors.New("sdapi: school id or code is required")
	}
	path := "school-data/school/code/" + url.PathEscape(identifier)
	if IsObjectID(identifier) {
		path = "school-data/school/" + identifier
	}
	var s model.School
	if err := c.do(ctx, http.MethodGet, path, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// PatchSchool partially updates school profile sub-documents.
func (c *Client) PatchSchool(ctx context.Context, id string, patch model.SchoolPatch) (*model.School, error) {
	if !IsObjectID(id) {
		return nil, fmt.Errorf("sdapi: %q is not a school document id", id)
	}
	if patch.IsEmpty() {
		return nil, errors.New("sdapi: school patch is empty")
	}
	var s model.School
	if err := c.do(ctx, http.MethodPatch, "school-data/school/"+id, patch, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CompleteEnrollment records enrollment completion for a school. The record
// is validated before any request is made.
func (c *Client) CompleteEnrollment(ctx context.Context, id string, e model.Enrollment) error {
	if err := validate.Struct(e); err != nil {
		return err
	}
	e.Complete = true
	return c.do(ctx, http.MethodPost, "school-data/"+url.PathEscape(id)+"/enrollment/complete", e, nil)
}

type codeRequest struct {
	Code string `json:"code"`
}

// FetchLearners returns the learner roster of a school.
func (c *Client) FetchLearners(ctx context.Context, code string) ([]model.Learner, error) {
	var learners []model.Learner
	path := "data-set/" + learnerDataset + "/get/learnersv2"
	if err := c.do(ctx, http.MethodPost, path, codeRequest{Code: code}, &learners); err != nil {
		return nil, err
	}
	return learners, nil
}

// FetchTeachers returns the teacher roster of a school.
func (c *Client) FetchTeachers(ctx context.Context, code string) ([]model.Teacher, error) {
	var teachers []model.Teacher
	if err := c.do(ctx, http.MethodPost, "user/getTeachersByCode", codeRequest{Code: code}, &teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

// FetchGenderStats returns the server-side gender and disability totals.
func (c *Client) FetchGenderStats(ctx context.Context, code string) (*model.GenderStats, error) {
	var s model.GenderStats
	if err := c.do(ctx, http.MethodPost, "data-set/overallMaleFemaleStat", codeRequest{Code: code}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// do performs a request with an optional JSON body and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("sdapi: encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("sdapi: building URL: %w", err)
	}
	target := c.baseURL.ResolveReference(ref)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("sdapi: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sdapi: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("sdapi: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrap(data), out); err != nil {
		return fmt.Errorf("sdapi: parsing %s response: %w", path, err)
	}
	return nil
}

// unwrap strips a {"data": ...} envelope when the server sends one.
func unwrap(data []byte) []byte {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return data
	}
	if err := json.Unmarshal(trimmed, &env); err != nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return data
	}
	return env.Data
}
