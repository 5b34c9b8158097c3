package feed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/goccy/go-json"

	"github.com/ytdash/ytdash/backend/go-services/internal/youtube"
	"github.com/ytdash/ytdash/backend/go-services/pkg/logger"
	"github.com/ytdash/ytdash/backend/go-services/pkg/metrics"
)

// DefaultSampleSize is the number of index draws per feed.
const DefaultSampleSize = 10

// Source is the part of the YouTube client the aggregator needs.
type Source interface {
	Subscriptions(ctx context.Context) (json.RawMessage, error)
	ChannelLatestVideos(ctx context.Context, channelID string, maxResults int) (json.RawMessage, error)
}

// LookupResult is the outcome of one per-channel lookup.
type LookupResult struct {
	Index     int
	ChannelID string
	Items     []youtube.VideoItem
	Err       error
}

// Result is the assembled feed. Lookups keeps per-channel detail for
// callers that want it; it is not part of the response body.
type Result struct {
	Items   []youtube.VideoItem `json:"items"`
	Count   int                 `json:"count"`
	Failed  int                 `json:"failed"`
	Lookups []LookupResult      `json:"-"`
}

// Aggregator builds a "latest videos" feed from a random sample of the
// caller's subscriptions.
type Aggregator struct {
	sampleSize int
	perChannel int
	sample     func(n int) int
}

type Option func(*Aggregator)

// WithSampler replaces the uniform index draw. fn must return a value in [0, n).
func WithSampler(fn func(n int) int) Option {
	return func(a *Aggregator) { a.sample = fn }
}

// WithPerChannel sets how many recent videos each sampled channel contributes.
func WithPerChannel(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.perChannel = n
		}
	}
}

func NewAggregator(sampleSize int, opts ...Option) *Aggregator {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	a := &Aggregator{sampleSize: sampleSize, perChannel: 1, sample: rand.IntN}
	for _, o := range opts {
		o(a)
	}
	return a
}

// SampleIndexes draws sampleSize indices in [0, n) with replacement and
// returns them as a set. n <= 0 yields an empty set.
func (a *Aggregator) SampleIndexes(n int) map[int]struct{} {
	picked := make(map[int]struct{}, a.sampleSize)
	if n <= 0 {
		return picked
	}
	for i := 0; i < a.sampleSize; i++ {
		picked[a.sample(n)] = struct{}{}
	}
	return picked
}

// Latest fetches subscriptions, samples them and looks up each sampled
// channel concurrently. Only a subscription-list failure fails the call.
func (a *Aggregator) Latest(ctx context.Context, src Source) (*Result, error) {
	raw, err := src.Subscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("feed: subscriptions: %w", err)
	}
	var subs youtube.SubscriptionListResponse
	if err := json.Unmarshal(raw, &subs); err != nil {
		return nil, fmt.Errorf("feed: decode subscriptions: %w", err)
	}

	picked := a.SampleIndexes(len(subs.Items))
	res := &Result{Items: []youtube.VideoItem{}}
	if len(picked) == 0 {
		return res, nil
	}

	lookups := make([]LookupResult, 0, len(picked))
	for i, s := range subs.Items {
		if _, ok := picked[i]; ok {
			lookups = append(lookups, LookupResult{Index: i, ChannelID: s.ChannelID()})
		}
	}

	var wg sync.WaitGroup
	for i := range lookups {
		l := &lookups[i]
		if l.ChannelID == "" {
			l.Err = fmt.Errorf("subscription %d has no channel id", l.Index)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Items, l.Err = a.lookup(ctx, src, l.ChannelID)
		}()
	}
	wg.Wait()

	for _, l := range lookups {
		if l.Err != nil {
			res.Failed++
			metrics.FeedLookups.WithLabelValues("failed").Inc()
			logger.Warnf("feed: latest videos for channel %q: %v", l.ChannelID, l.Err)
			continue
		}
		metrics.FeedLookups.WithLabelValues("ok").Inc()
		res.Items = append(res.Items, l.Items...)
	}
	res.Count = len(res.Items)
	res.Lookups = lookups
	logger.Infof("feed: %d items from %d lookups (%d failed, %d subscriptions)", res.Count, len(lookups), res.Failed, len(subs.Items))
	return res, nil
}

func (a *Aggregator) lookup(ctx context.Context, src Source, channelID string) ([]youtube.VideoItem, error) {
	raw, err := src.ChannelLatestVideos(ctx, channelID, a.perChannel)
	if err != nil {
		return nil, err
	}
	var page youtube.SearchListResponse
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode search page: %w", err)
	}
	return page.Items, nil
}
