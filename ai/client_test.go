package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polemica/polemica/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:        srv.URL,
		RequestsPerMin: 6000, // effectively unthrottled for tests
		Burst:          100,
	})
}

func TestGenerateQuestion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/question", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		w.Write([]byte(`{"question": "What evidence supports this?"}`))
	})

	q, err := c.GenerateQuestion(context.Background(), "taxes fund roads")
	require.NoError(t, err)
	assert.Equal(t, "What evidence supports this?", q)
}

func TestGenerateQuestionEmptyResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"question": ""}`))
	})

	_, err := c.GenerateQuestion(context.Background(), "claim")
	assert.Error(t, err)
}

func TestFindEvidence(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/evidence", r.URL.Path)
		w.Write([]byte(`{"evidence": [{"summary": "study A", "url": "https://example.org/a"}]}`))
	})

	ev, err := c.FindEvidence(context.Background(), "claim")
	require.NoError(t, err)
	require.Len(t, ev, 1)
	assert.Equal(t, "study A", ev[0].Summary)
	assert.Equal(t, "https://example.org/a", ev[0].URL)
}

func TestSummarize(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/summarize", r.URL.Path)
		w.Write([]byte(`{"summary": "the debate centers on funding"}`))
	})

	s, err := c.Summarize(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "the debate centers on funding", s)
}

func TestRateLimitErrorCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": "RATE_LIMIT"}`))
	})

	_, err := c.GenerateQuestion(context.Background(), "claim")
	assert.True(t, errors.IsRateLimitedError(err))
}

func TestRateLimitInOKResponse(t *testing.T) {
	// The service reports rate limits with HTTP 200 and an error body.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "RATE_LIMIT"}`))
	})

	_, err := c.GenerateQuestion(context.Background(), "claim")
	assert.True(t, errors.IsRateLimitedError(err))
}

func TestErrorInOKResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "Failed to generate question from AI model."}`))
	})

	_, err := c.GenerateQuestion(context.Background(), "claim")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to generate question")
	assert.False(t, errors.IsRateLimitedError(err))
}

func TestRateLimitStatus429(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.FindEvidence(context.Background(), "claim")
	assert.True(t, errors.IsRateLimitedError(err))
}

func TestLocalLimiterRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"question": "q"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL, RequestsPerMin: 0.0001, Burst: 1})

	_, err := c.GenerateQuestion(context.Background(), "first")
	require.NoError(t, err)

	_, err = c.GenerateQuestion(context.Background(), "second")
	assert.True(t, errors.IsRateLimitedError(err))
}

func TestTimeoutMapsToErrTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"question": "too late"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		BaseURL:         srv.URL,
		QuestionTimeout: 20 * time.Millisecond,
		RequestsPerMin:  6000,
		Burst:           100,
	})

	_, err := c.GenerateQuestion(context.Background(), "claim")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTimeout))
}

func TestServerErrorSurfacesBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`boom`))
	})

	_, err := c.GenerateQuestion(context.Background(), "claim")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.False(t, errors.IsRateLimitedError(err))
}
