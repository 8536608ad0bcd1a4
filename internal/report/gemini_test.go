package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abdig/internal/attendance"
	"abdig/internal/roster"
)

func newTestGemini(t *testing.T, h http.HandlerFunc) *Gemini {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	g := NewGemini(srv.URL+"/", "test-key", "gemini-2.5-flash", 2*time.Second)
	g.Now = func() time.Time { return time.Date(2024, 7, 15, 8, 0, 0, 0, time.UTC) }
	return g
}

func TestGemini_Summarize(t *testing.T) {
	var gotPrompt, gotPath, gotKey string
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt = req.Contents[0].Parts[0].Text
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Attendance is "},{"text":"healthy."}]}}]}`))
	})

	recs := attendance.SeedRecords("2024-07-15")
	text := g.Summarize(context.Background(), recs, roster.RoleStudent)

	assert.Equal(t, "Attendance is healthy.", text)
	assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, gotPrompt, "for Students on 2024-07-15")
	assert.Contains(t, gotPrompt, "- Present: 2")
	assert.Contains(t, gotPrompt, "- Sick: 1")
	assert.Contains(t, gotPrompt, "- Total Records: 3")
}

func TestGemini_FallbackOnFailure(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		},
		"no candidates": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		},
		"blank text": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			g := newTestGemini(t, h)
			assert.Equal(t, FallbackText, g.Summarize(context.Background(), nil, roster.RoleStudent))
		})
	}
}

// newStalledGemini returns a client whose server never answers until the test ends.
func newStalledGemini(t *testing.T) *Gemini {
	t.Helper()
	release := make(chan struct{})
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	// Registered after srv.Close, so it runs first and lets the handler return.
	t.Cleanup(func() { close(release) })
	return g
}

func TestGemini_FallbackOnTimeout(t *testing.T) {
	g := newStalledGemini(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Equal(t, FallbackText, g.Summarize(ctx, nil, roster.RoleStudent))
}

func TestGemini_ClientTimeoutWithoutDeadline(t *testing.T) {
	g := newStalledGemini(t)
	g.HTTP.Timeout = 50 * time.Millisecond

	start := time.Now()
	assert.Equal(t, FallbackText, g.Summarize(context.Background(), nil, roster.RoleStudent))
	assert.Less(t, time.Since(start), time.Second)
}

func TestGemini_NotConfigured(t *testing.T) {
	g := NewGemini("http://127.0.0.1:1", "", "gemini-2.5-flash", time.Second)
	text := g.Summarize(context.Background(), nil, roster.RoleStudent)
	assert.Equal(t, NotConfiguredText, text)
	assert.True(t, strings.HasPrefix(text, FallbackText))
}

func TestPrompt_TeacherGroup(t *testing.T) {
	p := Prompt(attendance.Tally{Present: 1, Late: 2, Alpha: 3, Total: 6}, roster.RoleTeacher, "2024-07-15")
	assert.Contains(t, p, "for Teachers on 2024-07-15")
	assert.Contains(t, p, "- Late: 2")
	assert.Contains(t, p, "- Alpha (Absent without notice): 3")
}
