package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ytdash/ytdash/backend/go-services/handlers"
	"github.com/ytdash/ytdash/backend/go-services/internal/config"
	"github.com/ytdash/ytdash/backend/go-services/internal/database"
	"github.com/ytdash/ytdash/backend/go-services/internal/feed"
	"github.com/ytdash/ytdash/backend/go-services/internal/oidc"
	"github.com/ytdash/ytdash/backend/go-services/internal/sessions"
	"github.com/ytdash/ytdash/backend/go-services/internal/youtube"
	"github.com/ytdash/ytdash/backend/go-services/pkg/logger"
	"github.com/ytdash/ytdash/backend/go-services/pkg/metrics"
	"github.com/ytdash/ytdash/backend/go-services/pkg/middleware"
)

var startTime = time.Now()

const badgerGCInterval = 10 * time.Minute

// sessionStore is the configured session backend plus its lifecycle hooks.
type sessionStore struct {
	kind  string
	repo  sessions.Repository
	ping  func(ctx context.Context) error
	close func()
}

// server bundles what the router needs.
type server struct {
	cfg      *config.Config
	store    *sessionStore
	sessions *sessions.Service
	provider handlers.LoginProvider
	youtube  *youtube.Client
	feed     *feed.Aggregator
	redis    *redis.Client
}

func main() {
	// initialize logging (LOG_LEVEL: debug|info|warn|error|fatal, LOG_FORMAT: console|json)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: env=%s store=%s redis=%v rate_limit=%v", cfg.Server.Environment, cfg.Session.Store, cfg.Redis.Host != "", cfg.RateLimit.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis backs the session store and/or the distributed rate limiter when configured
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			logger.Infof("connected to Redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
		defer func() { _ = rdb.Close() }()
	}

	store, err := openSessionStore(ctx, cfg, rdb)
	if err != nil {
		logger.Fatalf("session store: %v", err)
	}
	defer store.close()
	logger.Infof("using %s session store", store.kind)

	provider, err := oidc.NewGoogleProvider(ctx, cfg.Google)
	if err != nil {
		logger.Fatalf("google login: %v", err)
	}

	s := &server{
		cfg:      cfg,
		store:    store,
		sessions: sessions.NewService(store.repo, cfg.Session.TTL),
		provider: provider,
		youtube:  youtube.New(cfg.YouTube.BaseURL, cfg.YouTube.Timeout),
		feed:     feed.NewAggregator(cfg.Feed.SampleSize),
		redis:    rdb,
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      middleware.CORS(cfg.Frontend.AllowedOrigins)(s.router()),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("starting ytdash API on %s (frontend %s)", addr, cfg.Frontend.URL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Infof("shutting down")
	case err := <-errCh:
		logger.Errorf("server failed: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown: %v", err)
	}
}

// router builds the gin engine. CORS is applied around it by the caller.
func (s *server) router() *gin.Engine {
	if s.cfg.Server.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), gin.Recovery())

	cookie := middleware.CookieConfig{
		Name:   s.cfg.Session.CookieName,
		TTL:    s.cfg.Session.TTL,
		Secure: s.cfg.Server.Production(),
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Alternative YouTube Backend API"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", s.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)

	app := r.Group("/", middleware.Sessions(s.sessions, cookie))
	if s.cfg.RateLimit.Enabled {
		// Optional rate limiter (per-user when signed in, otherwise per-IP)
		if s.cfg.RateLimit.UseRedis && s.redis != nil {
			win := time.Duration(s.cfg.RateLimit.WindowSeconds) * time.Second
			app.Use(middleware.RedisRateLimitMiddleware(s.redis, s.cfg.RateLimit.RPS, s.cfg.RateLimit.Burst, win))
		} else {
			app.Use(middleware.RateLimitMiddleware(s.cfg.RateLimit.RPS, s.cfg.RateLimit.Burst))
		}
	}

	handlers.NewAuthHandler(s.cfg, s.provider, s.sessions, cookie).Register(app)
	yt := s.youtube
	factory := func(token string) handlers.VideoAPI { return yt.ForToken(token) }
	handlers.NewYouTubeHandler(factory, s.feed).Register(app)
	return r
}

// ready returns 200 only when the session store answers.
func (s *server) ready(c *gin.Context) {
	deps := map[string]bool{}
	ready := true

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.ping(ctx); err != nil {
		logger.Warnf("readiness: %s session store: %v", s.store.kind, err)
		deps["sessions"] = false
		ready = false
	} else {
		deps["sessions"] = true
	}

	if s.cfg.RateLimit.Enabled && s.cfg.RateLimit.UseRedis {
		deps["redis"] = s.redis != nil && s.redis.Ping(ctx).Err() == nil
		if !deps["redis"] {
			ready = false
		}
	}

	uptime := time.Since(startTime).String()
	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
}

func openSessionStore(ctx context.Context, cfg *config.Config, rdb *redis.Client) (*sessionStore, error) {
	switch cfg.Session.Store {
	case config.StoreRedis:
		if rdb == nil {
			return nil, errors.New("SESSION_STORE=redis but REDIS_HOST is not set")
		}
		return &sessionStore{
			kind:  config.StoreRedis,
			repo:  sessions.NewRedisRepository(rdb, "session:"),
			ping:  func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			close: func() {},
		}, nil

	case config.StoreMongo:
		client, err := connectMongoWithRetry(ctx, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		repo := sessions.NewMongoRepository(client.Database(cfg.MongoDB.Database).Collection("sessions"))
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warnf("mongo session indexes: %v", err)
		}
		return &sessionStore{
			kind:  config.StoreMongo,
			repo:  repo,
			ping:  func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close: func() { _ = client.Disconnect(context.Background()) },
		}, nil

	default:
		db, err := database.OpenBadger(cfg.Session.Path)
		if err != nil {
			return nil, err
		}
		repo := sessions.NewBadgerRepository(db)
		repo.StartGC(ctx, badgerGCInterval)
		return &sessionStore{
			kind: config.StoreFile,
			repo: repo,
			ping: func(ctx context.Context) error {
				if db.IsClosed() {
					return errors.New("badger is closed")
				}
				return nil
			},
			close: func() { _ = db.Close() },
		}, nil
	}
}

// connectMongoWithRetry tolerates startup races with the database container.
func connectMongoWithRetry(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Client, error) {
	const maxAttempts = 5
	backoff := time.Second
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err := database.ConnectMongo(ctx, cfg.URI, cfg.Timeout)
		if err == nil {
			return client, nil
		}
		lastErr = err
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return nil, fmt.Errorf("could not connect to MongoDB after %d attempts: %w", maxAttempts, lastErr)
}
