package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ytdash/ytdash/backend/go-services/internal/config"
	"github.com/ytdash/ytdash/backend/go-services/internal/feed"
	"github.com/ytdash/ytdash/backend/go-services/internal/models"
	"github.com/ytdash/ytdash/backend/go-services/internal/sessions"
	"github.com/ytdash/ytdash/backend/go-services/pkg/middleware"
)

const (
	testFrontend   = "http://localhost:5173"
	testCookieName = "ytdash.sid"
)

func init() { gin.SetMode(gin.TestMode) }

// fakeProvider stands in for Google.
type fakeProvider struct {
	exchangeErr error
	codes       []string
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (*models.Identity, error) {
	p.codes = append(p.codes, code)
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &models.Identity{
		AccessToken: "ya29.user-token",
		Profile:     models.Profile{ID: "sub-1", DisplayName: "Alice", Email: "a@b.c", Provider: "google"},
	}, nil
}

// fakeAPI records calls and answers from canned bodies.
type fakeAPI struct {
	mu        sync.Mutex
	calls     []string
	tokens    []string
	searchMax int
	bodies    map[string]string
	errs      map[string]error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{bodies: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeAPI) answer(name string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	if b, ok := f.bodies[name]; ok {
		return json.RawMessage(b), nil
	}
	return json.RawMessage(`{"kind":"` + name + `","items":[]}`), nil
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) ChannelInfo(ctx context.Context) (json.RawMessage, error) {
	return f.answer("channel")
}
func (f *fakeAPI) Playlists(ctx context.Context) (json.RawMessage, error) {
	return f.answer("playlists")
}
func (f *fakeAPI) Subscriptions(ctx context.Context) (json.RawMessage, error) {
	return f.answer("subscriptions")
}
func (f *fakeAPI) LikedVideos(ctx context.Context) (json.RawMessage, error) {
	return f.answer("liked")
}
func (f *fakeAPI) WatchHistory(ctx context.Context) (json.RawMessage, error) {
	return f.answer("history")
}
func (f *fakeAPI) PlaylistVideos(ctx context.Context, playlistID string) (json.RawMessage, error) {
	return f.answer("playlist:" + playlistID)
}
func (f *fakeAPI) SearchVideos(ctx context.Context, query string, maxResults int) (json.RawMessage, error) {
	f.mu.Lock()
	f.searchMax = maxResults
	f.mu.Unlock()
	return f.answer("search:" + query)
}
func (f *fakeAPI) VideoDetails(ctx context.Context, videoID string) (json.RawMessage, error) {
	return f.answer("video:" + videoID)
}
func (f *fakeAPI) ChannelLatestVideos(ctx context.Context, channelID string, maxResults int) (json.RawMessage, error) {
	return f.answer("latest:" + channelID)
}

type testEnv struct {
	router   *gin.Engine
	redis    *mr.Miniredis
	sessions *sessions.Service
	repo     sessions.Repository
	provider *fakeProvider
	api      *fakeAPI
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := sessions.NewRedisRepository(client, "")
	svc := sessions.NewService(repo, 24*time.Hour)

	cfg := &config.Config{}
	cfg.Frontend.URL = testFrontend
	cfg.Session.Secret = "test-secret"
	cfg.Session.StateTTL = 10 * time.Minute
	cfg.Session.CookieName = testCookieName
	cookie := middleware.CookieConfig{Name: testCookieName, TTL: 24 * time.Hour}

	env := &testEnv{redis: m, sessions: svc, repo: repo, provider: &fakeProvider{}, api: newFakeAPI()}

	r := gin.New()
	r.Use(middleware.Sessions(svc, cookie))
	NewAuthHandler(cfg, env.provider, svc, cookie).Register(&r.RouterGroup)
	factory := func(tok string) VideoAPI {
		env.api.mu.Lock()
		env.api.tokens = append(env.api.tokens, tok)
		env.api.mu.Unlock()
		return env.api
	}
	NewYouTubeHandler(factory, feed.NewAggregator(10)).Register(&r.RouterGroup)
	env.router = r
	return env
}

func (e *testEnv) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, ck := range cookies {
		if ck != nil {
			req.AddCookie(ck)
		}
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

// login walks /auth/google and the callback and returns the session cookie.
func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	w := e.get("/auth/google")
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	stateCookie := cookieNamed(w, stateCookieName)
	require.NotNil(t, stateCookie)

	w = e.get("/auth/google/callback?code=abc&state="+url.QueryEscape(state), stateCookie)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, testFrontend+"/dashboard", w.Header().Get("Location"))
	sid := cookieNamed(w, testCookieName)
	require.NotNil(t, sid)
	require.NotEmpty(t, sid.Value)
	return sid
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

var errUpstream = errors.New("upstream exploded: secret detail")
