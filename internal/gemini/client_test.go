package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"storysmith/internal/errors"
)

func successBody(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
}

// newBackend returns a test server that fails the first failures
// requests with HTTP 503 and then answers with the given text.
func newBackend(t *testing.T, failures int, text string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, ":generateContent")
		if int(n) <= failures {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, successBody(text))
	}))
}

func TestGenerate_FallsBackToNextModel(t *testing.T) {
	var calls atomic.Int32
	srv := newBackend(t, 3, "Once upon a time.", &calls)
	defer srv.Close()

	client := NewClient("test-key",
		WithBaseURL(srv.URL),
		WithModels([]string{
			"models/model-a",
			"models/model-b",
			"models/model-c",
			"models/model-d",
			"models/model-e",
		}),
		WithBackoff(time.Millisecond),
	)

	text, model, err := client.Generate(context.Background(), "a story idea", 0.7)

	assert.NoError(t, err)
	assert.Equal(t, "Once upon a time.", text)
	assert.Equal(t, "model-d", model)
	assert.Equal(t, int32(4), calls.Load(), "three failures then one success")
}

func TestGenerate_FirstModelSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := newBackend(t, 0, "A tale.", &calls)
	defer srv.Close()

	client := NewClient("test-key",
		WithBaseURL(srv.URL),
		WithModels([]string{"models/gemini-2.5-flash-lite", "models/gemini-2.5-flash"}),
		WithBackoff(time.Millisecond),
	)

	text, model, err := client.Generate(context.Background(), "idea", 0.5)

	assert.NoError(t, err)
	assert.Equal(t, "A tale.", text)
	assert.Equal(t, "gemini-2.5-flash-lite", model)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerate_AllModelsExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := newBackend(t, 100, "", &calls)
	defer srv.Close()

	client := NewClient("test-key",
		WithBaseURL(srv.URL),
		WithModels([]string{"models/model-a", "models/model-b", "models/model-c"}),
		WithBackoff(time.Millisecond),
	)

	text, model, err := client.Generate(context.Background(), "idea", 0.7)

	// Root causes are discarded; only the generic error surfaces.
	assert.ErrorIs(t, err, errors.ErrGenerationUnavailable)
	assert.Empty(t, text)
	assert.Empty(t, model)
	assert.Equal(t, int32(3), calls.Load(), "exactly one attempt per model")
}

func TestGenerate_EmptyCandidatesIsAFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	client := NewClient("test-key",
		WithBaseURL(srv.URL),
		WithModels([]string{"models/model-a"}),
		WithBackoff(time.Millisecond),
	)

	_, _, err := client.Generate(context.Background(), "idea", 0.7)
	assert.ErrorIs(t, err, errors.ErrGenerationUnavailable)
}

func TestGenerate_ContextCancelsBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient("test-key",
		WithBaseURL(srv.URL),
		WithModels([]string{"models/model-a", "models/model-b"}),
		WithBackoff(time.Minute),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := client.Generate(ctx, "idea", 0.7)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Generate did not return after context cancellation")
	}
}

func TestShortModelID(t *testing.T) {
	assert.Equal(t, "gemini-2.0-flash", shortModelID("models/gemini-2.0-flash"))
	assert.Equal(t, "bare-name", shortModelID("bare-name"))
}

func TestDefaultModels_Priority(t *testing.T) {
	assert.Len(t, DefaultModels, 11)
	assert.Equal(t, "models/gemini-2.5-flash-lite", DefaultModels[0])
	assert.Equal(t, "models/gemini-flash-lite-latest", DefaultModels[10])
	for _, m := range DefaultModels {
		assert.True(t, strings.HasPrefix(m, "models/"))
	}
}
