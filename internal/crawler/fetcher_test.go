package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(pages ...RankingPage) Config {
	return Config{
		RankingPages:   pages,
		BaseURL:        "https://type.jp",
		UserAgent:      "rankcrawl-test/1.0",
		FetchDelay:     0,
		RequestTimeout: 5 * time.Second,
		RenderTimeout:  5 * time.Second,
		MaxPageBytes:   1 << 20,
	}
}

func TestCollyFetcherSuccess(t *testing.T) {
	t.Parallel()

	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>ok</body></html>")) //nolint:errcheck
	}))
	defer server.Close()

	cfg := testConfig()
	fetcher, err := NewCollyFetcher(cfg, NewPacer(0), zap.NewNop())
	require.NoError(t, err)

	page, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, page.StatusCode)
	require.Contains(t, string(page.Body), "ok")
	require.Equal(t, "rankcrawl-test/1.0", gotUA, "fetches must identify with the configured agent")
	require.False(t, page.FetchedAt.IsZero())
}

func TestCollyFetcherServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher, err := NewCollyFetcher(testConfig(), NewPacer(0), zap.NewNop())
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	require.True(t, IsFetchError(err))

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, http.StatusInternalServerError, fe.StatusCode)
	require.Equal(t, server.URL, fe.URL)
}

func TestCollyFetcherTransportFailure(t *testing.T) {
	t.Parallel()

	// Reserve a port and close it so the connection is refused.
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	dead := server.URL
	server.Close()

	fetcher, err := NewCollyFetcher(testConfig(), NewPacer(0), zap.NewNop())
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), dead)
	require.Error(t, err)
	require.True(t, IsFetchError(err))
}

func TestCollyFetcherSingleAttempt(t *testing.T) {
	t.Parallel()

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fetcher, err := NewCollyFetcher(testConfig(), NewPacer(0), zap.NewNop())
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	require.Equal(t, 1, hits, "one attempt per call; retries belong to the caller")
}
