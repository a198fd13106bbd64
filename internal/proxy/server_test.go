package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicetimeapp/voicetime/internal/categorize"
)

// fakeCategorizer records calls and replies with canned data.
type fakeCategorizer struct {
	activities []categorize.Activity
	err        error
	connected  bool
	calls      int
}

func (f *fakeCategorizer) Categorize(ctx context.Context, transcript string, budgetMinutes int, categories []categorize.CategoryRef) ([]categorize.Activity, error) {
	f.calls++
	return f.activities, f.err
}

func (f *fakeCategorizer) TestConnection(ctx context.Context) bool {
	return f.connected
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(data)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_Categorize(t *testing.T) {
	fake := &fakeCategorizer{activities: []categorize.Activity{
		{Summary: "coding", Category: "work", Tags: []string{"go"}, Duration: 50},
	}}
	server := NewServer(fake, "test")

	rec := postJSON(t, server.Handler(), "/categorize", categorize.Request{
		Transcript:             "wrote some code",
		DefaultDurationMinutes: 50,
		Categories:             []categorize.CategoryRef{{ID: "work", Name: "Work"}},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp categorize.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Activities, 1)
	assert.Equal(t, "coding", resp.Activities[0].Summary)
	assert.Equal(t, 1, fake.calls)
}

func TestServer_CategorizeEmptyTranscript(t *testing.T) {
	fake := &fakeCategorizer{}
	server := NewServer(fake, "test")

	rec := postJSON(t, server.Handler(), "/categorize", categorize.Request{
		Transcript:             "   ",
		DefaultDurationMinutes: 60,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp categorize.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Activities, 1)
	assert.Equal(t, categorize.NoSpeechActivity(), resp.Activities[0])

	// The degenerate request never reaches the upstream model.
	assert.Equal(t, 0, fake.calls)
}

func TestServer_CategorizeBadBody(t *testing.T) {
	server := NewServer(&fakeCategorizer{}, "test")

	req := httptest.NewRequest(http.MethodPost, "/categorize", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_CategorizeUpstreamFailure(t *testing.T) {
	fake := &fakeCategorizer{err: errors.New("model unavailable")}
	server := NewServer(fake, "test")

	rec := postJSON(t, server.Handler(), "/categorize", categorize.Request{
		Transcript:             "did things",
		DefaultDurationMinutes: 60,
	})

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "categorization failed", resp["error"])
}

func TestServer_CategorizeRejectsGet(t *testing.T) {
	server := NewServer(&fakeCategorizer{}, "test")

	req := httptest.NewRequest(http.MethodGet, "/categorize", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_TestConnection(t *testing.T) {
	for _, connected := range []bool{true, false} {
		server := NewServer(&fakeCategorizer{connected: connected}, "test")

		req := httptest.NewRequest(http.MethodPost, "/test-connection", nil)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]bool
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, connected, resp["success"])
	}
}

func TestServer_Health(t *testing.T) {
	server := NewServer(&fakeCategorizer{}, "1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Status        string `json:"status"`
		UptimeSeconds int64  `json:"uptime_seconds"`
		Version       string `json:"version"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.GreaterOrEqual(t, resp.UptimeSeconds, int64(0))
}
