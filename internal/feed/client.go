package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/VanThanhHoang/server-game/internal/domain"
)

const (
	// DefaultBaseURL is the Graph API host live-comment feeds are fetched from.
	DefaultBaseURL = "https://graph.facebook.com"

	requestTimeout = 10 * time.Second
	pageDelay      = 100 * time.Millisecond
	platformName   = "facebook"
)

// Page is one page of normalized feed comments. Next is an opaque cursor for
// FetchNextPage; empty when the feed has no further pages.
type Page struct {
	Comments []domain.Comment
	Next     string
}

// Client fetches live comments from the external feed. It is stateless beyond
// configuration and never retries; retry policy belongs to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clock      clockwork.Clock
}

func NewClient(baseURL string, clock clockwork.Clock) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		clock:      clock,
	}
}

// FetchPage fetches the first page of comments for the configured target.
func (c *Client) FetchPage(ctx context.Context, cfg domain.FeedConfig) (Page, error) {
	return c.get(ctx, c.buildURL(cfg))
}

// FetchNextPage continues pagination using the cursor of a previous page.
func (c *Client) FetchNextPage(ctx context.Context, cursor string) (Page, error) {
	return c.get(ctx, cursor)
}

// FetchAll drains pagination up to maxPages, pacing follow-up requests to
// stay clear of upstream rate limits. This is an on-demand backfill, not part
// of the steady-state poll.
func (c *Client) FetchAll(ctx context.Context, cfg domain.FeedConfig, maxPages int) ([]domain.Comment, error) {
	page, err := c.FetchPage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	all := page.Comments
	for fetched := 1; page.Next != "" && fetched < maxPages; fetched++ {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		case <-c.clock.After(pageDelay):
		}

		page, err = c.FetchNextPage(ctx, page.Next)
		if err != nil {
			return all, err
		}
		all = append(all, page.Comments...)
	}
	return all, nil
}

// buildURL assembles the comment-feed request. Credential and target id are
// required; filter, ordering, freshness and field selection are optional.
func (c *Client) buildURL(cfg domain.FeedConfig) string {
	params := url.Values{}
	params.Set("access_token", cfg.AccessToken)
	if cfg.Limit > 0 {
		params.Set("limit", strconv.Itoa(cfg.Limit))
	}
	if cfg.Filter != "" {
		params.Set("filter", cfg.Filter)
	}
	if cfg.LiveFilter != "" {
		params.Set("live_filter", cfg.LiveFilter)
	}
	if cfg.Order != "" {
		params.Set("order", cfg.Order)
	}
	if cfg.Since != "" {
		params.Set("since", cfg.Since)
	}
	if cfg.Fields != "" {
		params.Set("fields", cfg.Fields)
	}
	return fmt.Sprintf("%s/%s/%s/comments?%s", c.baseURL, cfg.APIVersion, cfg.VideoID, params.Encode())
}

func (c *Client) get(ctx context.Context, requestURL string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("failed to build feed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("failed to read feed response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, newAPIError(resp.StatusCode, body)
	}

	var raw rawPage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Page{}, fmt.Errorf("failed to decode feed response: %w", err)
	}

	return Page{
		Comments: normalize(raw.Data),
		Next:     raw.Paging.Next,
	}, nil
}

// --- Wire types ---

type rawPage struct {
	Data   []rawComment `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

type rawComment struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	From    struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	} `json:"from"`
	CreatedTime string `json:"created_time"`
}

func normalize(items []rawComment) []domain.Comment {
	if len(items) == 0 {
		return nil
	}
	comments := make([]domain.Comment, 0, len(items))
	for _, item := range items {
		comments = append(comments, domain.Comment{
			ID: item.ID,
			Author: domain.Author{
				ID:     item.From.ID,
				Name:   item.From.Name,
				Avatar: item.From.Picture.Data.URL,
			},
			Platform:  domain.Platform{Name: platformName},
			Text:      item.Message,
			Timestamp: parseCreatedTime(item.CreatedTime),
		})
	}
	return comments
}

// parseCreatedTime converts the feed's created_time into unix milliseconds.
// The Graph API uses RFC 3339 with numeric zone offsets (no colon).
func parseCreatedTime(s string) int64 {
	for _, layout := range []string{"2006-01-02T15:04:05-0700", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}
