package synthelix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bnema/synthelix-nodes/internal/domain"
	"github.com/bnema/synthelix-nodes/internal/ports"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://dashboard.synthelix.io"

	csrfPath         = "/api/auth/csrf"
	signInPath       = "/api/auth/callback/web3"
	profilePath      = "/api/user/getprofile2"
	taskCompletePath = "/api/tasks/complete"
	dailyRewardPath  = "/api/rew/dailypoints"
	nodeStatusPath   = "/api/node/status"
	nodeStartPath    = "/api/node/start"
	nodeStopPath     = "/api/node/stop"
	pointsPath       = "/api/get/points"

	defaultTimeout   = 30 * time.Second
	maxErrorBodySize = 256
	formContentType  = "application/x-www-form-urlencoded"
)

// Client talks to the dashboard API. It keeps one resty client per outbound
// proxy so connections are never shared between proxied identities.
type Client struct {
	baseURL string
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	clients map[string]*resty.Client
}

var _ ports.ServiceClient = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	normalized, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: normalized,
		timeout: timeout,
		logger:  logger,
		clients: map[string]*resty.Client{},
	}, nil
}

func (c *Client) CSRF(ctx context.Context, conn domain.Connection) (domain.CSRF, error) {
	resp, err := c.do(ctx, "fetch csrf token", conn, "", http.MethodGet, csrfPath, nil)
	if err != nil {
		return domain.CSRF{}, err
	}

	var payload csrfResponse
	if err := decode(resp, &payload); err != nil {
		return domain.CSRF{}, fmt.Errorf("decode csrf response: %w", err)
	}
	if payload.CSRFToken == "" {
		return domain.CSRF{}, errors.New("csrf response missing token")
	}

	return domain.CSRF{Token: payload.CSRFToken, Cookies: joinCookies(resp.Cookies())}, nil
}

func (c *Client) SignIn(ctx context.Context, conn domain.Connection, req domain.SignInRequest) (string, error) {
	form := map[string]string{
		"address":      string(req.Address),
		"signature":    req.Signed.Signature,
		"domain":       req.Signed.Domain,
		"types":        req.Signed.Types,
		"value":        req.Signed.Value,
		"redirect":     "false",
		"callbackUrl":  "/",
		"referralCode": req.ReferralCode,
		"csrfToken":    req.CSRF.Token,
		"json":         "true",
	}

	resp, err := c.do(ctx, "sign in", conn, req.CSRF.Cookies, http.MethodPost, signInPath, func(r *resty.Request) {
		r.SetHeader("Content-Type", formContentType)
		r.SetFormData(form)
	})
	if err != nil {
		return "", err
	}

	return joinCookies(resp.Cookies()), nil
}

func (c *Client) Profile(ctx context.Context, session domain.Session) (domain.Profile, error) {
	resp, err := c.do(ctx, "fetch profile", session.Connection, session.Cookies, http.MethodGet, profilePath, func(r *resty.Request) {
		r.SetHeaders(map[string]string{
			"Referer":         c.baseURL + "/rewards",
			"Accept-Language": "en-US,en;q=0.9",
			"Sec-Fetch-Dest":  "empty",
			"Sec-Fetch-Mode":  "cors",
			"Sec-Fetch-Site":  "same-origin",
		})
	})
	if err != nil {
		return domain.Profile{}, err
	}

	var payload profileResponse
	if err := decode(resp, &payload); err != nil {
		return domain.Profile{}, fmt.Errorf("decode profile response: %w", err)
	}

	profile := domain.Profile{CompletedTasks: payload.CompletedTasks}
	if payload.LastDailyClaim != nil {
		profile.LastDailyClaim = strings.TrimSpace(*payload.LastDailyClaim)
	}

	return profile, nil
}

func (c *Client) CompleteTask(ctx context.Context, session domain.Session, title string, points string) (float64, error) {
	resp, err := c.do(ctx, fmt.Sprintf("complete task %q", title), session.Connection, session.Cookies, http.MethodPost, taskCompletePath, func(r *resty.Request) {
		r.SetBody(taskCompleteRequest{TaskTitle: title, Points: points})
	})
	if err != nil {
		return 0, err
	}

	var payload pointsResponse
	if err := decode(resp, &payload); err != nil {
		return 0, fmt.Errorf("decode task completion response: %w", err)
	}

	return float64(payload.Points), nil
}

func (c *Client) ClaimDailyReward(ctx context.Context, session domain.Session, points int) error {
	_, err := c.do(ctx, "claim daily reward", session.Connection, session.Cookies, http.MethodPost, dailyRewardPath, func(r *resty.Request) {
		r.SetBody(dailyRewardRequest{Points: points})
	})
	return err
}

func (c *Client) NodeStatus(ctx context.Context, session domain.Session) (domain.NodeStatus, error) {
	resp, err := c.do(ctx, "fetch node status", session.Connection, session.Cookies, http.MethodGet, nodeStatusPath, nil)
	if err != nil {
		return domain.NodeStatus{}, err
	}

	var payload nodeStatusResponse
	if err := decode(resp, &payload); err != nil {
		return domain.NodeStatus{}, fmt.Errorf("decode node status response: %w", err)
	}

	return domain.NodeStatus{
		Running:          payload.NodeRunning,
		SecondsRemaining: nonNegative(payload.TimeLeft),
		EarnedCredits:    nonNegative(payload.CurrentEarnedPoints),
		CreditsPerHour:   nonNegative(payload.PointsPerHour),
	}, nil
}

func (c *Client) StartNode(ctx context.Context, session domain.Session) error {
	_, err := c.do(ctx, "start node", session.Connection, session.Cookies, http.MethodPost, nodeStartPath, nil)
	return err
}

func (c *Client) StopNode(ctx context.Context, session domain.Session, claimedHours float64, pointsEarned float64) error {
	_, err := c.do(ctx, "stop node", session.Connection, session.Cookies, http.MethodPost, nodeStopPath, func(r *resty.Request) {
		r.SetBody(nodeStopRequest{ClaimedHours: claimedHours, PointsEarned: pointsEarned})
	})
	return err
}

func (c *Client) Points(ctx context.Context, session domain.Session) (domain.PointsSummary, error) {
	resp, err := c.do(ctx, "fetch points", session.Connection, session.Cookies, http.MethodGet, pointsPath, nil)
	if err != nil {
		return domain.PointsSummary{}, err
	}

	var payload pointsResponse
	if err := decode(resp, &payload); err != nil {
		return domain.PointsSummary{}, fmt.Errorf("decode points response: %w", err)
	}

	return domain.PointsSummary{TotalPoints: nonNegative(payload.Points)}, nil
}

func (c *Client) do(ctx context.Context, op string, conn domain.Connection, cookies string, method, path string, configure func(*resty.Request)) (*resty.Response, error) {
	req := c.clientFor(conn).R().
		SetContext(ctx).
		SetHeaders(c.headers(conn))
	if cookies != "" {
		req.SetHeader("Cookie", cookies)
	}
	if configure != nil {
		configure(req)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.IsError() {
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode(), Body: truncate(resp.String(), maxErrorBodySize)}
	}

	return resp, nil
}

func (c *Client) headers(conn domain.Connection) map[string]string {
	userAgent := conn.UserAgent
	if userAgent == "" {
		userAgent = domain.DefaultUserAgent
	}

	return map[string]string{
		"Accept":             "*/*",
		"Content-Type":       "application/json",
		"User-Agent":         userAgent,
		"Sec-Ch-Ua-Mobile":   "?0",
		"Sec-Ch-Ua-Platform": `"Windows"`,
		"Referer":            c.baseURL + "/",
	}
}

func (c *Client) clientFor(conn domain.Connection) *resty.Client {
	proxy := strings.TrimSpace(conn.ProxyURL)
	if proxy != "" {
		if parsed, err := url.Parse(proxy); err != nil || parsed.Host == "" {
			c.logger.Warn("invalid proxy, using direct connection", zap.String("proxy", RedactProxy(proxy)), zap.Error(err))
			proxy = ""
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[proxy]; ok {
		return client
	}

	// The jar is dropped so cookies only travel through Session.Cookies and
	// never leak between accounts sharing a transport.
	client := resty.New().
		SetBaseURL(c.baseURL).
		SetTimeout(c.timeout).
		SetCookieJar(nil)
	if proxy != "" {
		client.SetProxy(proxy)
	}

	c.clients[proxy] = client
	return client
}

func decode(resp *resty.Response, out any) error {
	body := resp.Body()
	if len(body) == 0 {
		return errors.New("empty response body")
	}
	return json.Unmarshal(body, out)
}

// joinCookies keeps the name=value pair of every Set-Cookie header.
func joinCookies(cookies []*http.Cookie) string {
	pairs := make([]string, 0, len(cookies))
	for _, cookie := range cookies {
		if cookie == nil || cookie.Name == "" {
			continue
		}
		pairs = append(pairs, cookie.Name+"="+cookie.Value)
	}
	return strings.Join(pairs, "; ")
}

func normalizeBaseURL(baseURL string) (string, error) {
	if strings.TrimSpace(baseURL) == "" {
		return "", errors.New("api base url is required")
	}

	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	return strings.TrimRight(parsed.String(), "/"), nil
}

// RedactProxy hides proxy credentials for logs.
func RedactProxy(proxy string) string {
	parsed, err := url.Parse(proxy)
	if err != nil || parsed.User == nil {
		return proxy
	}
	return parsed.Redacted()
}

func nonNegative(v number) float64 {
	if v < 0 {
		return 0
	}
	return float64(v)
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
