package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/brdocs/docket/internal/domain"
)

const (
	maxPageBytes = 4 << 20
	maxAPIBytes  = 1 << 20

	defaultUserAgent      = "Mozilla/5.0 (X11; Linux x86_64) docket"
	defaultRequestTimeout = 30 * time.Second
)

type Config struct {
	BaseURL        string
	SSOURL         string
	APIURL         string
	UserAgent      string
	RequestTimeout time.Duration
}

// The portal's API ignores standard cookie jar semantics in places, so
// cookies ride on the domain.Session and are applied to each request by hand.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if err := checkWebURL(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("portal base url: %w", err)
	}
	if err := checkWebURL(cfg.SSOURL); err != nil {
		return nil, fmt.Errorf("sso url: %w", err)
	}

	if cfg.APIURL == "" {
		cfg.APIURL = strings.TrimRight(cfg.BaseURL, "/") + "/portal-api/api"
	} else if err := checkWebURL(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("api url: %w", err)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{cfg: cfg, http: httpClient, logger: logger}, nil
}

func checkWebURL(raw string) error {
	if raw == "" {
		return errors.New("is required")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("must use http or https")
	}
	if parsed.Host == "" {
		return errors.New("host is required")
	}

	return nil
}

func (c *Client) pageURL(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

func (c *Client) apiURL(path string) string {
	return strings.TrimRight(c.cfg.APIURL, "/") + path
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, c.cfg.RequestTimeout)
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader, sess *domain.Session) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}

	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if sess != nil && sess.HasCookies() {
		req.Header.Set("Cookie", sess.CookieHeader())
	}

	return req, nil
}

func (c *Client) apiHeaders(req *http.Request, sess *domain.Session) {
	req.Header.Set("Accept", "application/json")
	if sess != nil && sess.User != nil && sess.User.ContextID != 0 {
		req.Header.Set("X-Portal-Context", strconv.FormatInt(sess.User.ContextID, 10))
	}
}

func (c *Client) do(req *http.Request, sess *domain.Session) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if sess != nil {
		harvestCookies(resp, sess)
	}

	return resp, nil
}

// harvestCookies folds every Set-Cookie from the response chain back into
// the session; the portal rotates its cookie on some redirect hops.
func harvestCookies(resp *http.Response, sess *domain.Session) {
	var chain []*http.Response
	for r := resp; r != nil; r = r.Request.Response {
		chain = append(chain, r)
	}

	for i := len(chain) - 1; i >= 0; i-- {
		for _, ck := range chain[i].Cookies() {
			sess.SetCookie(domain.Cookie{
				Name:   ck.Name,
				Value:  ck.Value,
				Domain: ck.Domain,
				Path:   ck.Path,
			})
		}
	}
}

func readPage(resp *http.Response) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	return string(raw), nil
}

func drainBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxAPIBytes))
	_ = resp.Body.Close()
}

func statusOK(resp *http.Response) bool {
	return resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
}
