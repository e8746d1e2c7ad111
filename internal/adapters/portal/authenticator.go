package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/brdocs/docket/internal/domain"
	"github.com/brdocs/docket/internal/ports"
	"github.com/brdocs/docket/internal/retry"
)

const (
	loginEntryPath  = "/portal/login"
	currentUserPath = "/user/current"
)

// Authenticator drives the portal's sign-on handshake. An optional browser
// driver takes over when the sign-on page renders its form with script
// instead of markup.
type Authenticator struct {
	client   *Client
	driver   ports.BrowserDriver
	pauseMin time.Duration
	pauseMax time.Duration
}

func NewAuthenticator(client *Client, driver ports.BrowserDriver, pauseMin, pauseMax time.Duration) *Authenticator {
	return &Authenticator{client: client, driver: driver, pauseMin: pauseMin, pauseMax: pauseMax}
}

func (a *Authenticator) Handshake(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	if err := creds.Validate(); err != nil {
		return domain.Session{}, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return domain.Session{}, fmt.Errorf("create cookie jar: %w", err)
	}
	browser := &http.Client{Jar: jar, Timeout: a.client.cfg.RequestTimeout}

	entry := a.client.pageURL(loginEntryPath)
	page, finalURL, err := a.openLoginEntry(ctx, browser, entry)
	if err != nil {
		return domain.Session{}, err
	}

	ssoHost, err := hostOf(a.client.cfg.SSOURL)
	if err != nil {
		return domain.Session{}, err
	}
	if finalURL.Host != ssoHost {
		return domain.Session{}, fmt.Errorf("login entry did not reach the sign-on host (landed on %s)", finalURL.Host)
	}

	action := extractFormAction(page)
	if action == "" {
		if a.driver != nil {
			a.client.logger.Info("sign-on form not in markup, falling back to browser driver")
			return a.driverHandshake(ctx, creds, entry)
		}
		return domain.Session{}, errors.New("sign-on form action not found")
	}
	if !strings.HasPrefix(action, "http") {
		action = strings.TrimRight(a.client.cfg.SSOURL, "/") + action
	}

	if err := retry.SleepBetween(ctx, a.pauseMin, a.pauseMax); err != nil {
		return domain.Session{}, err
	}

	if err := a.postCredentials(ctx, browser, action, creds); err != nil {
		return domain.Session{}, err
	}

	sess := a.collectCookies(jar)
	if !sess.HasCookies() {
		return domain.Session{}, errors.New("sign-on completed without portal cookies")
	}

	return sess, nil
}

func (a *Authenticator) openLoginEntry(ctx context.Context, browser *http.Client, entry string) (string, *url.URL, error) {
	reqCtx, cancel := a.client.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, entry, nil)
	if err != nil {
		return "", nil, fmt.Errorf("create login entry request: %w", err)
	}
	req.Header.Set("User-Agent", a.client.cfg.UserAgent)

	resp, err := browser.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("open login entry: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !statusOK(resp) {
		return "", nil, fmt.Errorf("open login entry: status %d", resp.StatusCode)
	}

	page, err := readPage(resp)
	if err != nil {
		return "", nil, err
	}

	return page, resp.Request.URL, nil
}

func (a *Authenticator) postCredentials(ctx context.Context, browser *http.Client, action string, creds domain.Credentials) error {
	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)

	reqCtx, cancel := a.client.requestContext(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, action, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create sign-on request: %w", err)
	}
	req.Header.Set("User-Agent", a.client.cfg.UserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", strings.TrimRight(a.client.cfg.SSOURL, "/"))

	resp, err := browser.Do(req)
	if err != nil {
		return fmt.Errorf("post credentials: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPageBytes))

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("post credentials: status %d", resp.StatusCode)
	}

	return nil
}

// The jar scopes by path, so both the page root and the API root are read.
func (a *Authenticator) collectCookies(jar http.CookieJar) domain.Session {
	var sess domain.Session
	for _, raw := range []string{a.client.cfg.BaseURL, a.client.cfg.APIURL} {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		for _, ck := range jar.Cookies(u) {
			sess.SetCookie(domain.Cookie{Name: ck.Name, Value: ck.Value, Domain: ck.Domain, Path: ck.Path})
		}
	}

	return sess
}

func (a *Authenticator) driverHandshake(ctx context.Context, creds domain.Credentials, entry string) (domain.Session, error) {
	if err := a.driver.Navigate(ctx, entry); err != nil {
		return domain.Session{}, fmt.Errorf("driver: open login entry: %w", err)
	}
	if err := a.driver.FillField(ctx, "#username", creds.Username); err != nil {
		return domain.Session{}, fmt.Errorf("driver: fill username: %w", err)
	}
	if err := a.driver.FillField(ctx, "#password", creds.Password); err != nil {
		return domain.Session{}, fmt.Errorf("driver: fill password: %w", err)
	}
	if err := a.driver.Click(ctx, "input[type=submit]"); err != nil {
		return domain.Session{}, fmt.Errorf("driver: submit sign-on form: %w", err)
	}

	cookies, err := a.driver.CurrentCookies(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("driver: read cookies: %w", err)
	}

	var sess domain.Session
	for _, ck := range cookies {
		sess.SetCookie(ck)
	}
	if !sess.HasCookies() {
		return domain.Session{}, errors.New("driver sign-on completed without portal cookies")
	}

	return sess, nil
}

func hostOf(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse sso url: %w", err)
	}

	return u.Host, nil
}

type Prober struct {
	client *Client
}

func NewProber(client *Client) *Prober {
	return &Prober{client: client}
}

type currentUserPayload struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Login      string `json:"login"`
	LocationID int64  `json:"locationId"`
}

func (p *Prober) Probe(ctx context.Context, sess *domain.Session) (domain.PortalUser, error) {
	reqCtx, cancel := p.client.requestContext(ctx)
	defer cancel()

	req, err := p.client.newRequest(reqCtx, http.MethodGet, p.client.apiURL(currentUserPath), nil, sess)
	if err != nil {
		return domain.PortalUser{}, err
	}
	p.client.apiHeaders(req, sess)

	resp, err := p.client.do(req, sess)
	if err != nil {
		return domain.PortalUser{}, fmt.Errorf("identity probe: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !statusOK(resp) {
		return domain.PortalUser{}, fmt.Errorf("identity probe: status %d", resp.StatusCode)
	}

	var payload currentUserPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAPIBytes)).Decode(&payload); err != nil {
		return domain.PortalUser{}, fmt.Errorf("decode identity probe response: %w", err)
	}
	if payload.ID == 0 {
		return domain.PortalUser{}, errors.New("identity probe returned no user")
	}

	return domain.PortalUser{
		ID:        payload.ID,
		Name:      payload.Name,
		Login:     payload.Login,
		ContextID: payload.LocationID,
	}, nil
}
