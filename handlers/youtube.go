package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/ytdash/ytdash/backend/go-services/internal/feed"
	"github.com/ytdash/ytdash/backend/go-services/internal/youtube"
	"github.com/ytdash/ytdash/backend/go-services/pkg/logger"
	"github.com/ytdash/ytdash/backend/go-services/pkg/middleware"
)

const (
	defaultSearchResults = 25
	maxSearchResults     = youtube.MaxPageSize
)

// VideoAPI is the per-user YouTube client used by the data routes.
type VideoAPI interface {
	ChannelInfo(ctx context.Context) (json.RawMessage, error)
	Playlists(ctx context.Context) (json.RawMessage, error)
	Subscriptions(ctx context.Context) (json.RawMessage, error)
	LikedVideos(ctx context.Context) (json.RawMessage, error)
	WatchHistory(ctx context.Context) (json.RawMessage, error)
	PlaylistVideos(ctx context.Context, playlistID string) (json.RawMessage, error)
	SearchVideos(ctx context.Context, query string, maxResults int) (json.RawMessage, error)
	VideoDetails(ctx context.Context, videoID string) (json.RawMessage, error)
	ChannelLatestVideos(ctx context.Context, channelID string, maxResults int) (json.RawMessage, error)
}

// ClientFactory binds a VideoAPI to one user's access token.
type ClientFactory func(accessToken string) VideoAPI

// YouTubeHandler serves /api/youtube. Every route sits behind RequireAuth.
type YouTubeHandler struct {
	newClient ClientFactory
	feed      *feed.Aggregator
}

func NewYouTubeHandler(f ClientFactory, agg *feed.Aggregator) *YouTubeHandler {
	return &YouTubeHandler{newClient: f, feed: agg}
}

func (h *YouTubeHandler) Register(rg *gin.RouterGroup) {
	y := rg.Group("/api/youtube", middleware.RequireAuth())
	y.GET("/channel", h.proxy("Failed to fetch channel information", VideoAPI.ChannelInfo))
	y.GET("/playlists", h.proxy("Failed to fetch playlists", VideoAPI.Playlists))
	y.GET("/subscriptions", h.proxy("Failed to fetch subscriptions", VideoAPI.Subscriptions))
	y.GET("/liked-videos", h.proxy("Failed to fetch liked videos", VideoAPI.LikedVideos))
	y.GET("/watch-history", h.proxy("Failed to fetch watch history", VideoAPI.WatchHistory))
	y.GET("/playlist/:playlistId/videos", h.PlaylistVideos)
	y.GET("/search", h.Search)
	y.GET("/video/:videoId", h.Video)
	y.GET("/latest-videos", h.LatestVideos)
}

// client returns the caller's API. RequireAuth guarantees the identity.
func (h *YouTubeHandler) client(c *gin.Context) VideoAPI {
	id, _ := middleware.CurrentIdentity(c)
	return h.newClient(id.AccessToken)
}

func (h *YouTubeHandler) proxy(msg string, call func(VideoAPI, context.Context) (json.RawMessage, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := call(h.client(c), c.Request.Context())
		h.respond(c, raw, err, msg)
	}
}

func (h *YouTubeHandler) PlaylistVideos(c *gin.Context) {
	raw, err := h.client(c).PlaylistVideos(c.Request.Context(), c.Param("playlistId"))
	h.respond(c, raw, err, "Failed to fetch playlist videos")
}

func (h *YouTubeHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required"})
		return
	}
	raw, err := h.client(c).SearchVideos(c.Request.Context(), q, parseMaxResults(c.Query("maxResults")))
	h.respond(c, raw, err, "Failed to search videos")
}

func (h *YouTubeHandler) Video(c *gin.Context) {
	raw, err := h.client(c).VideoDetails(c.Request.Context(), c.Param("videoId"))
	h.respond(c, raw, err, "Failed to fetch video details")
}

func (h *YouTubeHandler) LatestVideos(c *gin.Context) {
	res, err := h.feed.Latest(c.Request.Context(), h.client(c))
	if err != nil {
		h.fail(c, err, "Failed to fetch latest videos")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *YouTubeHandler) respond(c *gin.Context, raw json.RawMessage, err error, msg string) {
	if err != nil {
		h.fail(c, err, msg)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// fail logs the cause and answers with a static message; upstream detail
// never reaches the client.
func (h *YouTubeHandler) fail(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	user := ""
	if id, ok := middleware.CurrentIdentity(c); ok {
		user = id.Profile.ID
	}
	if errors.Is(err, youtube.ErrTokenExpired) {
		logger.Warnf("%s: access token rejected; re-authentication required (user %s)", c.FullPath(), user)
	} else {
		logger.Errorf("%s: %v (user %s)", c.FullPath(), err, user)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// parseMaxResults defaults to 25 and clamps to the upstream page size.
func parseMaxResults(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return defaultSearchResults
	}
	if n < 1 {
		return 1
	}
	if n > maxSearchResults {
		return maxSearchResults
	}
	return n
}
