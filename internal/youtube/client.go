package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/ytdash/ytdash/backend/go-services/pkg/logger"
	"github.com/ytdash/ytdash/backend/go-services/pkg/metrics"
)

const (
	// DefaultBaseURL is the YouTube Data API v3 root.
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"
	// MaxPageSize is the upstream cap on maxResults.
	MaxPageSize = 50

	maxBodyBytes = 8 << 20
)

// Client issues read-only Data API calls. Each method maps to exactly one
// upstream request (WatchHistory to two) and returns the body unmodified.
// A Client is bound to one user's token with ForToken; the unbound value
// is safe to share between requests.
type Client struct {
	baseURL string
	base    *http.Client
	http    *http.Client
	token   string
}

// New returns an unbound client. timeout applies to each upstream call.
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient is New with a caller-provided base client (tests, proxies).
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), base: hc}
}

// ForToken returns a copy of c that authenticates with accessToken.
func (c *Client) ForToken(accessToken string) *Client {
	cp := *c
	cp.token = accessToken
	cp.http = &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
			Base:   c.base.Transport,
		},
		Timeout: c.base.Timeout,
	}
	return &cp
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	if c.token == "" || c.http == nil {
		return nil, ErrMissingToken
	}
	u := c.baseURL + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("youtube %s: build request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.YouTubeRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("youtube %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.YouTubeRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("youtube %s: read body: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.YouTubeRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
		return nil, newAPIError(endpoint, resp.StatusCode, body)
	}
	if !json.Valid(body) {
		metrics.YouTubeRequests.WithLabelValues(endpoint, "malformed").Inc()
		return nil, fmt.Errorf("%w from %s", ErrMalformedResponse, endpoint)
	}
	metrics.YouTubeRequests.WithLabelValues(endpoint, "ok").Inc()
	logger.Debugf("youtube %s: %d bytes", endpoint, len(body))
	return json.RawMessage(body), nil
}

// ChannelInfo returns the caller's own channel.
func (c *Client) ChannelInfo(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "channels", url.Values{
		"part": {"snippet,statistics,contentDetails"},
		"mine": {"true"},
	})
}

func (c *Client) Playlists(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "playlists", url.Values{
		"part":       {"snippet,contentDetails"},
		"mine":       {"true"},
		"maxResults": {strconv.Itoa(MaxPageSize)},
	})
}

// Subscriptions returns the first page (up to 50) of the caller's subscriptions.
func (c *Client) Subscriptions(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "subscriptions", url.Values{
		"part":       {"snippet"},
		"mine":       {"true"},
		"maxResults": {strconv.Itoa(MaxPageSize)},
	})
}

func (c *Client) LikedVideos(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "videos", url.Values{
		"part":       {"snippet,statistics"},
		"myRating":   {"like"},
		"maxResults": {strconv.Itoa(MaxPageSize)},
	})
}

// WatchHistory resolves the caller's watch-history playlist from their
// channel and lists it. ErrNoChannel and ErrWatchHistoryUnavailable are
// returned instead of an empty result.
func (c *Client) WatchHistory(ctx context.Context) (json.RawMessage, error) {
	raw, err := c.get(ctx, "channels", url.Values{
		"part": {"contentDetails"},
		"mine": {"true"},
	})
	if err != nil {
		return nil, err
	}
	var channels ChannelListResponse
	if err := json.Unmarshal(raw, &channels); err != nil {
		return nil, fmt.Errorf("%w: channels: %v", ErrMalformedResponse, err)
	}
	if len(channels.Items) == 0 {
		return nil, ErrNoChannel
	}
	playlistID := channels.Items[0].ContentDetails.RelatedPlaylists.WatchHistory
	if playlistID == "" {
		return nil, ErrWatchHistoryUnavailable
	}
	return c.get(ctx, "playlistItems", url.Values{
		"part":       {"snippet"},
		"playlistId": {playlistID},
		"maxResults": {strconv.Itoa(MaxPageSize)},
	})
}

func (c *Client) PlaylistVideos(ctx context.Context, playlistID string) (json.RawMessage, error) {
	return c.get(ctx, "playlistItems", url.Values{
		"part":       {"snippet,contentDetails"},
		"playlistId": {playlistID},
		"maxResults": {strconv.Itoa(MaxPageSize)},
	})
}

func (c *Client) SearchVideos(ctx context.Context, query string, maxResults int) (json.RawMessage, error) {
	return c.get(ctx, "search", url.Values{
		"part":       {"snippet"},
		"q":          {query},
		"type":       {"video"},
		"maxResults": {strconv.Itoa(maxResults)},
	})
}

func (c *Client) VideoDetails(ctx context.Context, videoID string) (json.RawMessage, error) {
	return c.get(ctx, "videos", url.Values{
		"part": {"snippet,statistics,contentDetails"},
		"id":   {videoID},
	})
}

// ChannelLatestVideos lists a channel's most recent videos, newest first.
func (c *Client) ChannelLatestVideos(ctx context.Context, channelID string, maxResults int) (json.RawMessage, error) {
	return c.get(ctx, "search", url.Values{
		"part":       {"snippet"},
		"channelId":  {channelID},
		"type":       {"video"},
		"order":      {"date"},
		"maxResults": {strconv.Itoa(maxResults)},
	})
}
