package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	channels []string
	subsErr  error
	fail     map[string]bool
	calls    []string
	perCall  []int
}

func (f *fakeSource) Subscriptions(ctx context.Context) (json.RawMessage, error) {
	if f.subsErr != nil {
		return nil, f.subsErr
	}
	parts := make([]string, 0, len(f.channels))
	for _, ch := range f.channels {
		parts = append(parts, fmt.Sprintf(`{"snippet":{"title":"t","description":"","resourceId":{"kind":"youtube#channel","channelId":%q}}}`, ch))
	}
	return json.RawMessage(`{"items":[` + strings.Join(parts, ",") + `]}`), nil
}

func (f *fakeSource) ChannelLatestVideos(ctx context.Context, channelID string, maxResults int) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, channelID)
	f.perCall = append(f.perCall, maxResults)
	f.mu.Unlock()
	if f.fail[channelID] {
		return nil, errors.New("upstream 500")
	}
	return json.RawMessage(fmt.Sprintf(`{"items":[{"id":{"videoId":"v-%s"},"snippet":{"channelId":%q,"title":"latest","publishedAt":"2024-01-01T00:00:00Z"}}]}`, channelID, channelID)), nil
}

// sequence returns a sampler that yields the given indices in order, cycling.
func sequence(idx ...int) func(int) int {
	var mu sync.Mutex
	i := 0
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		v := idx[i%len(idx)] % n
		i++
		return v
	}
}

func videoIDs(r *Result) []string {
	out := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, it.ID.VideoID)
	}
	return out
}

func TestLatest_ZeroSubscriptions(t *testing.T) {
	src := &fakeSource{}
	res, err := NewAggregator(10).Latest(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Empty(t, src.calls)

	body, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"count":0,"failed":0}`, string(body))
}

func TestLatest_LookupsBoundedBySample(t *testing.T) {
	channels := make([]string, 50)
	for i := range channels {
		channels[i] = fmt.Sprintf("UC%02d", i)
	}
	src := &fakeSource{channels: channels}
	res, err := NewAggregator(10).Latest(context.Background(), src)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(src.calls), 10)
	assert.GreaterOrEqual(t, len(src.calls), 1)
	assert.Equal(t, len(src.calls), res.Count)
	for _, n := range src.perCall {
		assert.Equal(t, 1, n)
	}
}

func TestLatest_DuplicateDrawsCollapse(t *testing.T) {
	src := &fakeSource{channels: []string{"A", "B", "C"}}
	agg := NewAggregator(10, WithSampler(sequence(1)))
	res, err := agg.Latest(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, src.calls)
	assert.Equal(t, []string{"v-B"}, videoIDs(res))
}

func TestLatest_PreservesSubscriptionOrder(t *testing.T) {
	src := &fakeSource{channels: []string{"A", "B", "C", "D", "E"}}
	agg := NewAggregator(4, WithSampler(sequence(4, 0, 3, 1)))
	res, err := agg.Latest(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []string{"v-A", "v-B", "v-D", "v-E"}, videoIDs(res))
	require.Len(t, res.Lookups, 4)
	assert.Equal(t, []int{0, 1, 3, 4}, []int{res.Lookups[0].Index, res.Lookups[1].Index, res.Lookups[2].Index, res.Lookups[3].Index})
}

func TestLatest_PartialFailure(t *testing.T) {
	src := &fakeSource{channels: []string{"A", "B", "C"}, fail: map[string]bool{"B": true}}
	agg := NewAggregator(3, WithSampler(sequence(0, 1, 2)))
	res, err := agg.Latest(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []string{"v-A", "v-C"}, videoIDs(res))
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, 1, res.Failed)
	assert.Error(t, res.Lookups[1].Err)
}

func TestLatest_SubscriptionFetchFails(t *testing.T) {
	src := &fakeSource{channels: []string{"A"}, subsErr: errors.New("401")}
	res, err := NewAggregator(10).Latest(context.Background(), src)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Empty(t, src.calls)
}

func TestLatest_EmptyChannelIDIsFailedLookup(t *testing.T) {
	src := &fakeSource{channels: []string{"", "B"}}
	agg := NewAggregator(2, WithSampler(sequence(0, 1)))
	res, err := agg.Latest(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, src.calls)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []string{"v-B"}, videoIDs(res))
}

func TestLatest_PerChannelOption(t *testing.T) {
	src := &fakeSource{channels: []string{"A"}}
	_, err := NewAggregator(1, WithPerChannel(3)).Latest(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, src.perCall)
}

func TestSampleIndexes(t *testing.T) {
	agg := NewAggregator(10)
	assert.Empty(t, agg.SampleIndexes(0))
	for i := 0; i < 100; i++ {
		set := agg.SampleIndexes(3)
		assert.LessOrEqual(t, len(set), 3)
		for k := range set {
			assert.True(t, k >= 0 && k < 3)
		}
	}
}
