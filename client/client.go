package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/totegamma/engaja"
)

const (
	defaultTimeout = 10 * time.Second
	issueCacheTTL  = 30 * time.Second
)

// Client calls the engaja REST API. Single issue reads are cached briefly
// and dropped whenever this client mutates the issue.
type Client struct {
	client    *http.Client
	cache     *cache.Cache
	userAgent string
	baseURL   string
	token     string
}

func New(baseURL string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:    &httpClient,
		cache:     cache.New(issueCacheTTL, time.Minute),
		userAgent: "engaja-client/1.0",
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return http.DefaultTransport.RoundTrip(req)
}

// SetToken sets the bearer token used by subsequent calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected status code: %d: %s", e.StatusCode, e.Message)
}

func (c *Client) HttpRequest(ctx context.Context, method, path string, body, response any) error {

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if response == nil {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}

	return nil
}

// Session registers a user and keeps the returned token.
func (c *Client) Session(ctx context.Context, req engaja.SessionRequest) (engaja.SessionResponse, error) {
	var session engaja.SessionResponse
	err := c.HttpRequest(ctx, http.MethodPost, "/api/v1/session", req, &session)
	if err != nil {
		return engaja.SessionResponse{}, err
	}
	c.SetToken(session.Token)
	return session, nil
}

func (c *Client) Me(ctx context.Context) (engaja.UserView, error) {
	var user engaja.UserView
	err := c.HttpRequest(ctx, http.MethodGet, "/api/v1/me", nil, &user)
	return user, err
}

// ListIssues lists issues for view: public, mine or visible.
func (c *Client) ListIssues(ctx context.Context, view string) ([]engaja.IssueView, error) {
	path := "/api/v1/issues"
	if view != "" {
		path += "?view=" + view
	}
	var issues []engaja.IssueView
	err := c.HttpRequest(ctx, http.MethodGet, path, nil, &issues)
	return issues, err
}

func (c *Client) GetIssue(ctx context.Context, id string) (engaja.IssueView, error) {
	cacheKey := "issue:" + c.token + ":" + id
	x, found := c.cache.Get(cacheKey)
	if found {
		return x.(engaja.IssueView), nil
	}

	var issue engaja.IssueView
	err := c.HttpRequest(ctx, http.MethodGet, "/api/v1/issues/"+id, nil, &issue)
	if err != nil {
		return engaja.IssueView{}, err
	}

	c.cache.Set(cacheKey, issue, cache.DefaultExpiration)
	return issue, nil
}

func (c *Client) CreateIssue(ctx context.Context, req engaja.CreateIssueRequest) (engaja.IssueView, error) {
	var issue engaja.IssueView
	err := c.HttpRequest(ctx, http.MethodPost, "/api/v1/issues", req, &issue)
	return issue, err
}

func (c *Client) Support(ctx context.Context, id string) (engaja.SupportResult, error) {
	var result engaja.SupportResult
	err := c.mutate(ctx, http.MethodPost, id, "/support", nil, &result)
	return result, err
}

func (c *Client) Flag(ctx context.Context, id, reason string) (engaja.IssueView, error) {
	var issue engaja.IssueView
	err := c.mutate(ctx, http.MethodPost, id, "/flag", engaja.FlagRequest{Reason: reason}, &issue)
	return issue, err
}

func (c *Client) Comment(ctx context.Context, id, text string) (engaja.IssueView, error) {
	var issue engaja.IssueView
	err := c.mutate(ctx, http.MethodPost, id, "/comments", engaja.CommentRequest{Text: text}, &issue)
	return issue, err
}

func (c *Client) Respond(ctx context.Context, id string, req engaja.CommentRequest) (engaja.IssueView, error) {
	var issue engaja.IssueView
	err := c.mutate(ctx, http.MethodPost, id, "/responses", req, &issue)
	return issue, err
}

func (c *Client) DeleteIssue(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, id, "", nil, nil)
}

func (c *Client) Polls(ctx context.Context) ([]engaja.PollView, error) {
	var polls []engaja.PollView
	err := c.HttpRequest(ctx, http.MethodGet, "/api/v1/polls", nil, &polls)
	return polls, err
}

func (c *Client) VotePoll(ctx context.Context, pollID, optionID string) (engaja.VoteResult[engaja.PollView], error) {
	var result engaja.VoteResult[engaja.PollView]
	err := c.HttpRequest(ctx, http.MethodPost, "/api/v1/polls/"+pollID+"/vote", engaja.PollVoteRequest{OptionID: optionID}, &result)
	return result, err
}

func (c *Client) mutate(ctx context.Context, method, id, suffix string, body, response any) error {
	c.invalidate(id)
	return c.HttpRequest(ctx, method, "/api/v1/issues/"+id+suffix, body, response)
}

func (c *Client) invalidate(id string) {
	for key := range c.cache.Items() {
		if strings.HasSuffix(key, ":"+id) {
			c.cache.Delete(key)
		}
	}
}
