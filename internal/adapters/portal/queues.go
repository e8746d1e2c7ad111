package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/brdocs/docket/internal/domain"
)

const (
	queuesPath        = "/workdesk/queues"
	starredQueuesPath = "/workdesk/queues/starred"
)

// Only the queue name, not an id, addresses a queue on this surface.
type QueueClient struct {
	client *Client
}

func NewQueueClient(client *Client) *QueueClient {
	return &QueueClient{client: client}
}

type queuePayload struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	PendingCount int    `json:"pendingCount"`
}

type queueFilterPayload struct {
	CaseNumber string   `json:"caseNumber"`
	Subject    string   `json:"subject"`
	Tags       []string `json:"tags"`
}

type casePagePayload struct {
	Count    int `json:"count"`
	Entities []struct {
		CaseID     int64  `json:"caseId"`
		CaseNumber string `json:"caseNumber"`
	} `json:"entities"`
}

type caseCriteriaPayload struct {
	CaseNumber string `json:"caseNumber"`
	Page       int    `json:"page"`
	MaxResults int    `json:"maxResults"`
}

func (g *QueueClient) Queues(ctx context.Context, sess *domain.Session, starred bool) ([]domain.Queue, error) {
	path := queuesPath
	if starred {
		path = starredQueuesPath
	}

	body, err := json.Marshal(queueFilterPayload{Tags: []string{}})
	if err != nil {
		return nil, fmt.Errorf("encode queue filter: %w", err)
	}

	var payload []queuePayload
	if err := g.postJSON(ctx, sess, g.client.apiURL(path), body, &payload); err != nil {
		return nil, fmt.Errorf("list queues: %w", err)
	}

	queues := make([]domain.Queue, 0, len(payload))
	for _, q := range payload {
		if q.PendingCount <= 0 {
			continue
		}
		queues = append(queues, domain.Queue{
			ID:      q.ID,
			Name:    q.Name,
			Pending: q.PendingCount,
			Starred: starred,
		})
	}

	return queues, nil
}

func (g *QueueClient) Cases(ctx context.Context, sess *domain.Session, queue string, starred bool, page, size int) ([]domain.CaseRef, int, error) {
	endpoint := g.client.apiURL(fmt.Sprintf("/workdesk/queues/%s/%t/pending-cases", url.PathEscape(queue), starred))

	body, err := json.Marshal(caseCriteriaPayload{Page: page, MaxResults: size})
	if err != nil {
		return nil, 0, fmt.Errorf("encode case criteria: %w", err)
	}

	var payload casePagePayload
	if err := g.postJSON(ctx, sess, endpoint, body, &payload); err != nil {
		return nil, 0, fmt.Errorf("list queue cases: %w", err)
	}

	cases := make([]domain.CaseRef, 0, len(payload.Entities))
	for _, e := range payload.Entities {
		cases = append(cases, domain.CaseRef{ID: e.CaseID, Number: e.CaseNumber})
	}

	return cases, payload.Count, nil
}

func (g *QueueClient) postJSON(ctx context.Context, sess *domain.Session, endpoint string, body []byte, out any) error {
	reqCtx, cancel := g.client.requestContext(ctx)
	defer cancel()

	req, err := g.client.newRequest(reqCtx, http.MethodPost, endpoint, bytes.NewReader(body), sess)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	g.client.apiHeaders(req, sess)

	resp, err := g.client.do(req, sess)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if !statusOK(resp) {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAPIBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
