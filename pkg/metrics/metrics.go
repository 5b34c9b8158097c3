package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ytdash", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ytdash", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	YouTubeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ytdash", Name: "youtube_requests_total", Help: "Upstream YouTube Data API calls by endpoint and outcome."},
		[]string{"endpoint", "outcome"},
	)
	FeedLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ytdash", Name: "feed_lookups_total", Help: "Per-channel latest-video lookups issued by the feed aggregator."},
		[]string{"result"},
	)
	SessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "ytdash", Name: "sessions_created_total", Help: "Sessions created after a successful Google login."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(YouTubeRequests)
	reg.MustRegister(FeedLookups)
	reg.MustRegister(SessionsCreated)
}
