package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/brdocs/docket/internal/domain"
)

const (
	availableDownloadsPath = "/docs/v1/downloads/available"
	downloadURLPath        = "/docs/v2/repository/download-url"

	pickupOrigin = "FIRST_INSTANCE"

	// Bundles run large; transfers get their own ceiling.
	artifactFetchTimeout = 2 * time.Minute
)

// A listed bundle's opaque handle is first exchanged for a short-lived
// storage link; the link itself is fetched without session cookies.
type PickupClient struct {
	client *Client
}

func NewPickupClient(client *Client) *PickupClient {
	return &PickupClient{client: client}
}

type pickupListPayload struct {
	AvailableDownloads []pickupItemPayload `json:"availableDownloads"`
}

type pickupItemPayload struct {
	UserID       int64  `json:"userId"`
	FileName     string `json:"fileName"`
	DownloadHash string `json:"downloadHash"`
	ExpiresAt    int64  `json:"expiresAt"`
	Status       string `json:"status"`
	Origin       string `json:"origin"`
	Items        []struct {
		CaseNumber string `json:"caseNumber"`
	} `json:"items"`
}

func (p *PickupClient) Available(ctx context.Context, sess *domain.Session) ([]domain.PickupItem, error) {
	if sess == nil || sess.User == nil {
		return nil, errors.New("pickup listing needs a probed session")
	}

	endpoint := p.client.apiURL(availableDownloadsPath) + "?" + url.Values{
		"userId": {strconv.FormatInt(sess.User.ID, 10)},
		"origin": {pickupOrigin},
	}.Encode()

	reqCtx, cancel := p.client.requestContext(ctx)
	defer cancel()

	req, err := p.client.newRequest(reqCtx, http.MethodGet, endpoint, nil, sess)
	if err != nil {
		return nil, err
	}
	p.client.apiHeaders(req, sess)

	resp, err := p.client.do(req, sess)
	if err != nil {
		return nil, fmt.Errorf("list pickup area: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !statusOK(resp) {
		return nil, fmt.Errorf("list pickup area: status %d", resp.StatusCode)
	}

	var payload pickupListPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAPIBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode pickup listing: %w", err)
	}

	items := make([]domain.PickupItem, 0, len(payload.AvailableDownloads))
	for _, d := range payload.AvailableDownloads {
		item := domain.PickupItem{
			Handle:   d.DownloadHash,
			FileName: d.FileName,
			Status:   d.Status,
		}
		if d.ExpiresAt > 0 {
			item.ExpiresAt = time.UnixMilli(d.ExpiresAt)
		}
		seen := map[string]bool{}
		for _, entry := range d.Items {
			if entry.CaseNumber == "" || seen[entry.CaseNumber] {
				continue
			}
			seen[entry.CaseNumber] = true
			item.Cases = append(item.Cases, entry.CaseNumber)
		}
		items = append(items, item)
	}

	return items, nil
}

func (p *PickupClient) FetchArtifact(ctx context.Context, sess *domain.Session, item domain.PickupItem, destDir string) (string, error) {
	link, err := p.resolveDownloadURL(ctx, sess, item.Handle)
	if err != nil {
		return "", err
	}

	fileName := item.FileName
	if fileName == "" {
		fileName = item.Handle + ".zip"
	}

	return p.streamToFile(ctx, link, destDir, fileName)
}

func (p *PickupClient) FetchDirect(ctx context.Context, rawURL, caseNumber, destDir string) (string, error) {
	return p.streamToFile(ctx, rawURL, destDir, directFileName(rawURL, caseNumber))
}

func (p *PickupClient) resolveDownloadURL(ctx context.Context, sess *domain.Session, handle string) (string, error) {
	endpoint := p.client.apiURL(downloadURLPath) + "?" + url.Values{"handle": {handle}}.Encode()

	reqCtx, cancel := p.client.requestContext(ctx)
	defer cancel()

	req, err := p.client.newRequest(reqCtx, http.MethodGet, endpoint, nil, sess)
	if err != nil {
		return "", err
	}
	p.client.apiHeaders(req, sess)

	resp, err := p.client.do(req, sess)
	if err != nil {
		return "", fmt.Errorf("resolve download url: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !statusOK(resp) {
		return "", fmt.Errorf("resolve download url: status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIBytes))
	if err != nil {
		return "", fmt.Errorf("read download url: %w", err)
	}

	link := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if link == "" {
		return "", errors.New("empty download url")
	}

	return link, nil
}

func (p *PickupClient) streamToFile(ctx context.Context, rawURL, destDir, fileName string) (string, error) {
	fetchCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, artifactFetchTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create artifact request: %w", err)
	}
	req.Header.Set("User-Agent", p.client.cfg.UserAgent)

	resp, err := p.client.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch artifact: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !statusOK(resp) {
		return "", fmt.Errorf("fetch artifact: status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination dir: %w", err)
	}

	path := filepath.Join(destDir, fileName)
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create artifact file: %w", err)
	}

	written, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write artifact: %w", err)
	}

	p.client.logger.Info("artifact saved", "path", path, "bytes", written)

	return path, nil
}
