package clients

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go/mock"
	"go.uber.org/mock/gomock"
)

func TestCacheKeyIsStableAndPrefixed(t *testing.T) {
	a := CacheKey("great movie")
	b := CacheKey("great movie")
	c := CacheKey("bad movie")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, VALKEY_PREDICTION_PREFIX))
	assert.Len(t, strings.TrimPrefix(a, VALKEY_PREDICTION_PREFIX), 64)
}

func TestIsConnectionError(t *testing.T) {
	assert.False(t, isConnectionError(nil))
	assert.True(t, isConnectionError(errors.New("dial tcp: connection refused")))
	assert.True(t, isConnectionError(errors.New("unexpected EOF")))
	assert.False(t, isConnectionError(errors.New("WRONGTYPE")))
}

func newMockValkey(t *testing.T, ttl time.Duration) (*ValkeyClient, *mock.Client) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)
	return &ValkeyClient{Client: client, opts: ValkeyOptions{TTL: ttl}}, client
}

func TestGetSentimentHit(t *testing.T) {
	vc, client := newMockValkey(t, 24*time.Hour)
	client.EXPECT().
		Do(gomock.Any(), mock.Match("GET", CacheKey("great film"))).
		Return(mock.Result(mock.ValkeyString("Positive")))

	label, ok, err := vc.GetSentiment(context.Background(), "great film")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Positive", label)
}

func TestGetSentimentMiss(t *testing.T) {
	vc, client := newMockValkey(t, 24*time.Hour)
	client.EXPECT().
		Do(gomock.Any(), mock.Match("GET", CacheKey("unseen"))).
		Return(mock.Result(mock.ValkeyNil())).
		Times(1)

	label, ok, err := vc.GetSentiment(context.Background(), "unseen")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, label)
}

func TestSetSentimentWithTTL(t *testing.T) {
	vc, client := newMockValkey(t, 24*time.Hour)
	client.EXPECT().
		Do(gomock.Any(), mock.Match("SET", CacheKey("great film"), "Positive", "EX", "86400")).
		Return(mock.Result(mock.ValkeyString("OK")))

	assert.NoError(t, vc.SetSentiment(context.Background(), "great film", "Positive"))
}

func TestSetSentimentWithoutTTL(t *testing.T) {
	vc, client := newMockValkey(t, 0)
	client.EXPECT().
		Do(gomock.Any(), mock.Match("SET", CacheKey("great film"), "Negative")).
		Return(mock.Result(mock.ValkeyString("OK")))

	assert.NoError(t, vc.SetSentiment(context.Background(), "great film", "Negative"))
}

func TestDoWithRetryDoesNotSleepAfterLastAttempt(t *testing.T) {
	vc, client := newMockValkey(t, time.Hour)
	client.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "k")).
		Return(mock.ErrorResult(errors.New("LOADING"))).
		Times(2)

	start := time.Now()
	res := vc.DoWithRetry(context.Background(), client.B().Get().Key("k").Build(), 2)

	assert.Error(t, res.Error())
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestDoWithRetryStopsWhenContextDone(t *testing.T) {
	vc, client := newMockValkey(t, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "k")).
		Return(mock.ErrorResult(errors.New("LOADING"))).
		Times(1)

	start := time.Now()
	res := vc.DoWithRetry(ctx, client.B().Get().Key("k").Build(), 3)

	assert.Error(t, res.Error())
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}
