package tenderapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/licitaciones-portal/internal/model"
)

const (
	pathTenders    = "/licitaciones"
	pathStatistics = "/estadisticas"
	maxErrorBody   = 4 << 10
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With().Str("component", "tenderapi").Logger(),
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

type ListResult struct {
	Page       model.TenderPage
	Statistics *model.Statistics
}

func (c *Client) ListTenders(ctx context.Context, q Query) (*ListResult, error) {
	endpoint := pathTenders
	if encoded := q.Values().Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var env listEnvelope
	if err := c.get(ctx, endpoint, &env); err != nil {
		return nil, err
	}
	if err := env.check(); err != nil {
		return nil, err
	}

	items := make([]model.Tender, 0, len(env.Data))
	for _, raw := range env.Data {
		items = append(items, normalizeTender(raw))
	}

	result := &ListResult{Page: model.TenderPage{Items: items, Total: env.total(len(items))}}
	if env.Statistics != nil {
		stats := env.Statistics.toModel()
		result.Statistics = &stats
	}
	return result, nil
}

func (c *Client) GetTender(ctx context.Context, id string) (model.Tender, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Tender{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	var env detailEnvelope
	if err := c.get(ctx, pathTenders+"/"+url.PathEscape(id), &env); err != nil {
		return model.Tender{}, err
	}
	if err := env.check(); err != nil {
		return model.Tender{}, err
	}
	if len(env.Data) == 0 {
		return model.Tender{}, ErrNotFound
	}
	return normalizeTender(env.Data), nil
}

func (c *Client) GetStatistics(ctx context.Context) (model.Statistics, error) {
	var env statisticsEnvelope
	if err := c.get(ctx, pathStatistics, &env); err != nil {
		return model.Statistics{}, err
	}
	if err := env.check(); err != nil {
		return model.Statistics{}, err
	}
	if env.Data == nil {
		return model.Statistics{}, nil
	}
	return env.Data.toModel(), nil
}

func (c *Client) get(ctx context.Context, endpoint string, out apiEnvelope) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn().Err(err).Str("endpoint", endpoint).Msg("tender api unreachable")
		return &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(started)).
		Msg("tender api call")

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnectionError{Err: err}
	}

	decodeErr := json.Unmarshal(body, out)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Message = out.message()
		} else if len(body) < maxErrorBody {
			apiErr.Message = strings.TrimSpace(string(body))
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, decodeErr)
	}
	return nil
}
