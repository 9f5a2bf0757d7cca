package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rssBody(items string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>search</title>` + items + `</channel></rss>`
}

func TestHeadlines_RelevanceAndLimit(t *testing.T) {
	pub := time.Now().UTC().Format(time.RFC1123Z)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssBody(fmt.Sprintf(`
			<item><title>RELIANCE hits new high</title><link>http://a</link><pubDate>%s</pubDate></item>
			<item><title>Unrelated market story</title><link>http://b</link><pubDate>%s</pubDate></item>
			<item><title>Reliance announces results</title><link>http://c</link><pubDate>%s</pubDate></item>
			<item><title>RELIANCE third story</title><link>http://d</link><pubDate>%s</pubDate></item>`,
			pub, pub, pub, pub))))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL+"?q=%s", 2, zerolog.Nop())
	got := f.Headlines(context.Background(), []string{"RELIANCE"})

	require.Len(t, got["RELIANCE"], 2, "capped at max per stock")
	assert.Equal(t, "RELIANCE hits new high", got["RELIANCE"][0].Title)
	assert.Equal(t, "Reliance announces results", got["RELIANCE"][1].Title, "match is case-insensitive")
}

func TestHeadlines_StaleItemsDropped(t *testing.T) {
	old := time.Now().Add(-96 * time.Hour).UTC().Format(time.RFC1123Z)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rssBody(fmt.Sprintf(
			`<item><title>TCS old story</title><link>http://a</link><pubDate>%s</pubDate></item>`, old))))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL+"?q=%s", 2, zerolog.Nop())
	got := f.Headlines(context.Background(), []string{"TCS"})
	assert.Empty(t, got["TCS"])
}

func TestHeadlines_FetchFailureYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL+"?q=%s", 2, zerolog.Nop())
	got := f.Headlines(context.Background(), []string{"INFY"})
	assert.Contains(t, got, "INFY")
	assert.Empty(t, got["INFY"])
}

func TestCleanRedirect(t *testing.T) {
	assert.Equal(t, "https://example.com/story",
		cleanRedirect("https://news.google.com/articles?x=1&url=https://example.com/story&ct=2"))
	assert.Equal(t, "https://example.com/direct", cleanRedirect("https://example.com/direct"))
}
