package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spacesedan/reviewsense/internal/clients"
	"github.com/spacesedan/reviewsense/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPredictor struct {
	mu    sync.Mutex
	calls []string
	label string
}

func (p *countingPredictor) Predict(_ context.Context, review string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, review)
	return p.label, nil
}

func (p *countingPredictor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type browser struct {
	t      *testing.T
	srv    *Server
	cookie *http.Cookie
}

func newBrowser(t *testing.T, predictor view.Predictor) *browser {
	t.Helper()
	srv, err := New(Options{Predictor: predictor})
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return &browser{t: t, srv: srv}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.srv.Handler().ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			b.cookie = c
		}
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) postForm(path, review string) *httptest.ResponseRecorder {
	form := url.Values{"review": {review}}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) state() stateResponse {
	rec := b.get("/state")
	require.Equal(b.t, http.StatusOK, rec.Code)
	var s stateResponse
	require.NoError(b.t, json.Unmarshal(rec.Body.Bytes(), &s))
	return s
}

func (b *browser) waitResolved() stateResponse {
	var s stateResponse
	require.Eventually(b.t, func() bool {
		s = b.state()
		return !s.Pending
	}, 2*time.Second, 10*time.Millisecond)
	return s
}

func TestIndexRendersEmptyForm(t *testing.T) {
	b := newBrowser(t, &countingPredictor{label: "Positive"})

	rec := b.get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, b.cookie)
	body := rec.Body.String()
	assert.Contains(t, body, `<span id="characters">0</span> characters`)
	assert.Contains(t, body, `type="submit" disabled>Analyze Sentiment`)
	assert.NotContains(t, body, "Analysis Result")
}

func TestReviewUpdatesCounter(t *testing.T) {
	b := newBrowser(t, &countingPredictor{})

	rec := b.postForm("/review", "Loved it")
	require.Equal(t, http.StatusOK, rec.Code)

	s := b.state()
	assert.Equal(t, "Loved it", s.Review)
	assert.Equal(t, 8, s.Characters)
	assert.True(t, s.CanSubmit)
	assert.Equal(t, "unset", s.Result)
	assert.Nil(t, s.Badge)
}

func TestAnalyzeBlankReviewSendsNothing(t *testing.T) {
	predictor := &countingPredictor{label: "Positive"}
	b := newBrowser(t, predictor)

	rec := b.postForm("/analyze", "   ")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	s := b.state()
	assert.False(t, s.Pending)
	assert.Equal(t, "unset", s.Result)
	assert.Zero(t, predictor.count())
}

func TestAnalyzeShowsPositiveBadge(t *testing.T) {
	predictor := &countingPredictor{label: "Positive"}
	b := newBrowser(t, predictor)

	b.postForm("/analyze", "A masterpiece")
	s := b.waitResolved()

	assert.Equal(t, "positive", s.Result)
	require.NotNil(t, s.Badge)
	assert.Equal(t, "affirmative", s.Badge.Kind)
	assert.Equal(t, []string{"A masterpiece"}, predictor.calls)

	body := b.get("/").Body.String()
	assert.Contains(t, body, "Analysis Result")
	assert.Contains(t, body, "badge-affirmative")
	assert.Contains(t, body, "Positive Review")
}

func TestAnalyzeAgainstPredictorOverHTTP(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		result string
		badge  string
	}{
		{"negative", http.StatusOK, `{"sentiment":"Negative"}`, "negative", "negative"},
		{"server error", http.StatusInternalServerError, `{"sentiment":"Positive"}`, "error", "warning"},
		{"unrecognized", http.StatusOK, `{"sentiment":"Neutral"}`, "unrecognized", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			predictor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer predictor.Close()

			b := newBrowser(t, clients.NewPredictClient(predictor.URL, time.Second))
			b.postForm("/analyze", "some review")
			s := b.waitResolved()

			assert.Equal(t, tc.result, s.Result)
			assert.True(t, s.CanSubmit)
			if tc.badge == "" {
				assert.Nil(t, s.Badge)
				return
			}
			require.NotNil(t, s.Badge)
			assert.Equal(t, tc.badge, s.Badge.Kind)
		})
	}
}

func TestAnalyzeConnectionRefused(t *testing.T) {
	predictor := httptest.NewServer(http.NotFoundHandler())
	addr := predictor.URL
	predictor.Close()

	b := newBrowser(t, clients.NewPredictClient(addr, time.Second))
	b.postForm("/analyze", "some review")
	s := b.waitResolved()

	assert.Equal(t, "error", s.Result)
	require.NotNil(t, s.Badge)
	assert.Equal(t, "Error analyzing review", s.Badge.Text)
}

func TestSessionsAreIsolated(t *testing.T) {
	predictor := &countingPredictor{label: "Positive"}
	first := newBrowser(t, predictor)
	second := &browser{t: t, srv: first.srv}

	first.postForm("/review", "mine")
	second.postForm("/review", "theirs")

	assert.Equal(t, "mine", first.state().Review)
	assert.Equal(t, "theirs", second.state().Review)
	assert.Equal(t, 2, first.srv.sessions.len())
}

func TestHealthReflectsPredictor(t *testing.T) {
	healthy := &atomic.Bool{}
	srv, err := New(Options{Predictor: &countingPredictor{}, PredictorHealthy: healthy})
	require.NoError(t, err)
	defer srv.Close()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	healthy.Store(true)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSweepClosesIdleSessions(t *testing.T) {
	store := newSessionStore(func() *view.Controller { return view.NewController(&countingPredictor{}) })
	now := time.Unix(1000, 0)
	store.now = func() time.Time { return now }

	staleID, _ := store.get("")
	now = now.Add(10 * time.Minute)
	freshID, _ := store.get("")

	assert.Equal(t, 1, store.sweep(5*time.Minute))
	assert.Equal(t, 1, store.len())

	id, _ := store.get(freshID)
	assert.Equal(t, freshID, id)
	id, _ = store.get(staleID)
	assert.NotEqual(t, staleID, id)
}

func TestAnalyzeCountsCRLFAsOneCharacter(t *testing.T) {
	predictor := &countingPredictor{label: "Positive"}
	b := newBrowser(t, predictor)

	b.postForm("/analyze", "a\r\nb")
	s := b.waitResolved()

	assert.Equal(t, "a\nb", s.Review)
	assert.Equal(t, 3, s.Characters)
	assert.Equal(t, []string{"a\nb"}, predictor.calls)
	assert.Contains(t, b.get("/").Body.String(), `<span id="characters">3</span> characters`)

	b.postForm("/review", "x\r\ny\r\nz")
	assert.Equal(t, 5, b.state().Characters)
}

type blockingPredictor struct {
	release chan struct{}
}

func (p *blockingPredictor) Predict(ctx context.Context, _ string) (string, error) {
	select {
	case <-p.release:
		return "Negative", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestPendingPagePollsStateInsteadOfRefreshing(t *testing.T) {
	predictor := &blockingPredictor{release: make(chan struct{})}
	b := newBrowser(t, predictor)

	b.postForm("/analyze", "slow review")
	body := b.get("/").Body.String()

	assert.NotContains(t, body, `http-equiv="refresh"`)
	assert.Regexp(t, `var pending =\s*true\s*;`, body)
	assert.Contains(t, body, `fetch("/state")`)
	assert.Contains(t, body, `type="submit" disabled>Analyzing...`)

	close(predictor.release)
	s := b.waitResolved()
	assert.Equal(t, "negative", s.Result)
	assert.Regexp(t, `var pending =\s*false\s*;`, b.get("/").Body.String())
}
