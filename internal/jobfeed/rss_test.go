package jobfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-resume-go/internal/config"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Remote Programming Jobs</title>
    <item>
      <title>Acme Corp: Senior Go Developer</title>
      <link>https://example.com/jobs/1</link>
      <description>Build backend services in Go and PostgreSQL.</description>
      <pubDate>Mon, 24 Aug 2026 10:00:00 +0000</pubDate>
      <region>Remote</region>
    </item>
    <item>
      <title>Globex: React Frontend Engineer</title>
      <link>https://example.com/jobs/2</link>
      <description>React, TypeScript and modern CSS.</description>
      <pubDate>Tue, 25 Aug 2026 12:30:00 +0000</pubDate>
      <region>Europe</region>
    </item>
    <item>
      <title>Initech: Data Scientist</title>
      <link>https://example.com/jobs/3</link>
      <description>Python, pandas and ML pipelines.</description>
      <pubDate>not a date</pubDate>
    </item>
  </channel>
</rss>`

func newTestClient(t *testing.T, handler http.HandlerFunc, maxItems int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.JobFeedConfig{
		FeedURL:        srv.URL,
		TimeoutSeconds: 2,
		MaxItems:       maxItems,
	})
}

func TestFetchJobsParsesFeed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}, 60)

	jobs, err := c.FetchJobs(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	assert.Equal(t, "Senior Go Developer", jobs[0].Title)
	assert.Equal(t, "Acme Corp", jobs[0].Company)
	assert.Equal(t, "Remote", jobs[0].Location)
	assert.Equal(t, "https://example.com/jobs/1", jobs[0].URL)
	assert.False(t, jobs[0].PublishedAt.IsZero())
	// 非法日期降级为零值而不是报错
	assert.True(t, jobs[2].PublishedAt.IsZero())
}

func TestFetchJobsKeywordFilter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleFeed))
	}, 60)

	jobs, err := c.FetchJobs(context.Background(), []string{"react"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "React Frontend Engineer", jobs[0].Title)
}

func TestFetchJobsMaxItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleFeed))
	}, 2)

	jobs, err := c.FetchJobs(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestFetchJobsServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, 60)

	_, err := c.FetchJobs(context.Background(), nil)
	assert.Error(t, err)
}

func TestFetchJobsMalformedXML(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not xml"))
	}, 60)

	_, err := c.FetchJobs(context.Background(), nil)
	assert.Error(t, err)
}
