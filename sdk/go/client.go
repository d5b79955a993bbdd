// Package sdk provides a typed Go client for the SkillSprint HTTP and
// WebSocket API.
package sdk

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
	"time"

	"github.com/gorilla/websocket"

	"skillsprint/analytics"
	"skillsprint/core"
)

// Option configures the Client.
type Option func(*Client)

// Client provides typed access to the SkillSprint HTTP + WebSocket API.
type Client struct {
	baseURL    string
	wsURL      string
	httpClient *http.Client
	headers    http.Header
}

// NewClient constructs a new SDK client targeting the given baseURL (e.g., http://localhost:8080/api).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL:    baseURL,
		wsURL:      deriveWSURL(baseURL),
		httpClient: http.DefaultClient,
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithAuthToken adds an Authorization: Bearer token header to all requests (HTTP + WS).
func WithAuthToken(token string) Option {
	return func(c *Client) {
		if strings.TrimSpace(token) != "" {
			c.headers.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithAPIKey adds an X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		if strings.TrimSpace(key) != "" {
			c.headers.Set("X-API-Key", key)
		}
	}
}

// WithHeader sets an arbitrary header applied to HTTP and WS calls.
func WithHeader(k, v string) Option {
	return func(c *Client) {
		if k != "" {
			c.headers.Set(k, v)
		}
	}
}

// Onboard creates a learner profile and returns it with the first day's tasks.
func (c *Client) Onboard(ctx context.Context, req OnboardRequest) (OnboardResult, error) {
	var res OnboardResult
	err := c.do(ctx, http.MethodPost, "/users", req, &res)
	return res, err
}

// Profile fetches the learner profile.
func (c *Client) Profile(ctx context.Context, userID string) (core.Profile, error) {
	var p core.Profile
	if strings.TrimSpace(userID) == "" {
		return p, ErrEmptyUserID
	}
	err := c.do(ctx, http.MethodGet, c.userPath(userID, ""), nil, &p)
	return p, err
}

// DailyTasks returns today's task plan, generating it if needed.
func (c *Client) DailyTasks(ctx context.Context, userID string) ([]core.Task, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}
	var body struct {
		Tasks []core.Task `json:"tasks"`
	}
	err := c.do(ctx, http.MethodGet, c.userPath(userID, "/tasks"), nil, &body)
	return body.Tasks, err
}

// History returns the full task history in assignment order.
func (c *Client) History(ctx context.Context, userID string) ([]core.Task, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}
	var body struct {
		Tasks []core.Task `json:"tasks"`
	}
	err := c.do(ctx, http.MethodGet, c.userPath(userID, "/history"), nil, &body)
	return body.Tasks, err
}

// CompleteTask marks a task completed and returns the awarded points,
// any new badges, and the updated profile.
func (c *Client) CompleteTask(ctx context.Context, userID, taskID string) (CompletionResult, error) {
	var res CompletionResult
	if strings.TrimSpace(userID) == "" {
		return res, ErrEmptyUserID
	}
	path := c.userPath(userID, "/tasks/"+url.PathEscape(taskID)+"/complete")
	err := c.do(ctx, http.MethodPost, path, nil, &res)
	return res, err
}

// SubmitQuiz records a quiz score (0-100) for a quiz task.
func (c *Client) SubmitQuiz(ctx context.Context, userID, taskID string, score int) (CompletionResult, error) {
	var res CompletionResult
	if strings.TrimSpace(userID) == "" {
		return res, ErrEmptyUserID
	}
	path := c.userPath(userID, "/tasks/"+url.PathEscape(taskID)+"/quiz")
	err := c.do(ctx, http.MethodPost, path, map[string]int{"score": score}, &res)
	return res, err
}

// Progress fetches the aggregated progress dashboard.
func (c *Client) Progress(ctx context.Context, userID string) (ProgressReport, error) {
	var report ProgressReport
	if strings.TrimSpace(userID) == "" {
		return report, ErrEmptyUserID
	}
	err := c.do(ctx, http.MethodGet, c.userPath(userID, "/progress"), nil, &report)
	return report, err
}

// Badges returns the badge catalog with earned status for the user.
func (c *Client) Badges(ctx context.Context, userID string) ([]core.Badge, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}
	var body struct {
		Badges []core.Badge `json:"badges"`
	}
	err := c.do(ctx, http.MethodGet, c.userPath(userID, "/badges"), nil, &body)
	return body.Badges, err
}

// UpdateSettings applies a partial profile edit.
func (c *Client) UpdateSettings(ctx context.Context, userID string, upd SettingsUpdate) (core.Profile, error) {
	var p core.Profile
	if strings.TrimSpace(userID) == "" {
		return p, ErrEmptyUserID
	}
	err := c.do(ctx, http.MethodPatch, c.userPath(userID, "/settings"), upd, &p)
	return p, err
}

// Reset deletes the profile and all task history for the user.
func (c *Client) Reset(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrEmptyUserID
	}
	return c.do(ctx, http.MethodPost, c.userPath(userID, "/reset"), nil, nil)
}

// Export downloads the portable progress snapshot.
func (c *Client) Export(ctx context.Context, userID string) (analytics.Snapshot, error) {
	var snap analytics.Snapshot
	if strings.TrimSpace(userID) == "" {
		return snap, ErrEmptyUserID
	}
	err := c.do(ctx, http.MethodGet, c.userPath(userID, "/export"), nil, &snap)
	return snap, err
}

// Lesson fetches generated lesson content for a non-quiz task.
func (c *Client) Lesson(ctx context.Context, userID, taskID string) (LessonContent, error) {
	var lesson LessonContent
	if strings.TrimSpace(userID) == "" {
		return lesson, ErrEmptyUserID
	}
	path := c.userPath(userID, "/tasks/"+url.PathEscape(taskID)+"/lesson")
	err := c.do(ctx, http.MethodGet, path, nil, &lesson)
	return lesson, err
}

// Questions fetches generated quiz questions for a quiz task.
func (c *Client) Questions(ctx context.Context, userID, taskID string) ([]core.Question, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}
	var body struct {
		Questions []core.Question `json:"questions"`
	}
	path := c.userPath(userID, "/tasks/"+url.PathEscape(taskID)+"/questions")
	err := c.do(ctx, http.MethodGet, path, nil, &body)
	return body.Questions, err
}

// Leaderboard returns the top n users by total points.
func (c *Client) Leaderboard(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	path := "/leaderboard"
	if n > 0 {
		path = fmt.Sprintf("/leaderboard?n=%d", n)
	}
	var body struct {
		Entries []LeaderboardEntry `json:"entries"`
	}
	err := c.do(ctx, http.MethodGet, path, nil, &body)
	return body.Entries, err
}

// Health probes /healthz and returns status + storage check.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var hs HealthStatus
	err := c.do(ctx, http.MethodGet, "/healthz", nil, &hs)
	return hs, err
}

// SubscribeEvents connects to the WebSocket stream and emits core.Event values.
// The returned channel closes when ctx is done or the connection drops.
func (c *Client) SubscribeEvents(ctx context.Context) (<-chan core.Event, error) {
	return c.subscribe(ctx, c.wsURL)
}

// SubscribeUserEvents is SubscribeEvents filtered to a single user's events.
func (c *Client) SubscribeUserEvents(ctx context.Context, userID string) (<-chan core.Event, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}
	return c.subscribe(ctx, c.wsURL+"?user_id="+url.QueryEscape(userID))
}

func (c *Client) subscribe(ctx context.Context, wsURL string) (<-chan core.Event, error) {
	if c.wsURL == "" {
		return nil, errors.New("wsURL is not set; ensure baseURL is http/https")
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, wsURL, c.headers)
	if err != nil {
		return nil, err
	}

	out := make(chan core.Event, 32)
	go func() {
		defer close(out)
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
				var evt core.Event
				if err := conn.ReadJSON(&evt); err != nil {
					return
				}
				select {
				case out <- evt:
				default:
					// drop if consumer is slow
				}
			}
		}
	}()
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, reqBody, target any) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeJSON(resp, target)
}

func (c *Client) userPath(userID, suffix string) string {
	return "/users/" + url.PathEscape(userID) + suffix
}

func (c *Client) applyHeaders(r *http.Request) {
	for k, vals := range c.headers {
		for _, v := range vals {
			r.Header.Add(k, v)
		}
	}
}

func deriveWSURL(httpBase string) string {
	u, err := url.Parse(httpBase)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		// leave as-is for custom schemes
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String()
}
