package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brdocs/docket/internal/domain"
	"github.com/brdocs/docket/internal/retry"
)

const contextPagePath = "/portal/home"

// Selection posts the row's link control together with the home page's view
// state.
type ContextClient struct {
	client   *Client
	pauseMin time.Duration
	pauseMax time.Duration
}

func NewContextClient(client *Client, pauseMin, pauseMax time.Duration) *ContextClient {
	return &ContextClient{client: client, pauseMin: pauseMin, pauseMax: pauseMax}
}

func (g *ContextClient) List(ctx context.Context, sess *domain.Session) ([]domain.OperatingContext, error) {
	page, err := g.homePage(ctx, sess)
	if err != nil {
		return nil, err
	}

	rows := extractContextRows(page)
	contexts := make([]domain.OperatingContext, 0, len(rows))
	for _, row := range rows {
		contexts = append(contexts, domain.ParseOperatingContext(row.index, row.label))
	}

	return contexts, nil
}

func (g *ContextClient) Select(ctx context.Context, sess *domain.Session, target domain.OperatingContext) error {
	page, err := g.homePage(ctx, sess)
	if err != nil {
		return err
	}

	viewState := extractViewState(page)
	if viewState == "" {
		viewState = "j_id1"
	}

	if err := retry.SleepBetween(ctx, g.pauseMin, g.pauseMax); err != nil {
		return err
	}

	link := fmt.Sprintf("roleForm:roleTable:%d:roleLink", target.Index)
	form := url.Values{}
	form.Set("roleForm", "roleForm")
	form.Set("autoScroll", "")
	form.Set("javax.faces.ViewState", viewState)
	form.Set(link, link)

	reqCtx, cancel := g.client.requestContext(ctx)
	defer cancel()

	req, err := g.client.newRequest(reqCtx, http.MethodPost, g.client.pageURL(contextPagePath), strings.NewReader(form.Encode()), sess)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", strings.TrimRight(g.client.cfg.BaseURL, "/"))

	resp, err := g.client.do(req, sess)
	if err != nil {
		return fmt.Errorf("post context selection: %w", err)
	}
	drainBody(resp)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("post context selection: status %d", resp.StatusCode)
	}

	return nil
}

func (g *ContextClient) homePage(ctx context.Context, sess *domain.Session) (string, error) {
	reqCtx, cancel := g.client.requestContext(ctx)
	defer cancel()

	req, err := g.client.newRequest(reqCtx, http.MethodGet, g.client.pageURL(contextPagePath), nil, sess)
	if err != nil {
		return "", err
	}

	resp, err := g.client.do(req, sess)
	if err != nil {
		return "", fmt.Errorf("open home page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !statusOK(resp) {
		return "", fmt.Errorf("open home page: status %d", resp.StatusCode)
	}

	return readPage(resp)
}
