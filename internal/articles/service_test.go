package articles

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
)

const newsPage = `<!DOCTYPE html>
<html><body>
<article>
  <h2><a href="/2025/06/summer-schedule/">Summer schedule announced</a></h2>
  <time datetime="2025-06-01">June 1, 2025</time>
  <p>The summer timetable starts next week.</p>
</article>
<article>
  <h2><a href="https://example.com/fleet-news/">New vehicles in the fleet</a></h2>
  <p>Three new vans join the fleet.</p>
</article>
<article>
  <h2>No link here</h2>
</article>
</body></html>`

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestLatestParsesArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(newsPage))
	}))
	defer srv.Close()

	svc := NewService(testLogger(), srv.URL)
	articles, err := svc.Latest(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)

	require.Equal(t, "Summer schedule announced", articles[0].Title)
	require.Equal(t, srv.URL+"/2025/06/summer-schedule/", articles[0].URL)
	require.Equal(t, "June 1, 2025", articles[0].Date)
	require.Equal(t, "The summer timetable starts next week.", articles[0].Excerpt)

	// Absolute hrefs pass through untouched.
	require.Equal(t, "https://example.com/fleet-news/", articles[1].URL)
	require.Empty(t, articles[1].Date)
}

func TestLatestUpstreamErrorIsBadGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewService(testLogger(), srv.URL)
	_, err := svc.Latest(context.Background())
	require.ErrorIs(t, err, httpx.ErrUpstream)
}

func TestLatestUnreachableUpstreamIsBadGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	svc := NewService(testLogger(), srv.URL)
	_, err := svc.Latest(context.Background())
	require.ErrorIs(t, err, httpx.ErrUpstream)
}

func TestLatestEmptyPageYieldsEmptySlice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>nothing here</p></body></html>`))
	}))
	defer srv.Close()

	svc := NewService(testLogger(), srv.URL)
	articles, err := svc.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, articles)
	require.Empty(t, articles)
}
