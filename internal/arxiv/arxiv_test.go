// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-feed/internal/httputil"
	"github.com/pdiddy/paper-feed/pkg/types"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <title>ArXiv Query</title>
  <entry>
    <id>http://arxiv.org/abs/2501.01234v1</id>
    <title>  Scaling Laws for
  Sparse Models  </title>
    <published>2025-01-15T18:59:59Z</published>
    <summary>  We study scaling.
Results follow.  </summary>
    <author><name>Alice Smith</name></author>
    <author><name>Bob Jones</name></author>
    <arxiv:primary_category term="cs.LG"/>
    <category term="cs.LG" scheme="http://arxiv.org/schemas/atom"/>
    <category term="cs.AI" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2501.01111v2</id>
    <title>No Term</title>
    <published>2025-01-14T10:00:00Z</published>
    <summary>Second.</summary>
    <author><name>Carol</name></author>
    <category scheme="http://arxiv.org/schemas/atom"/>
  </entry>
</feed>`

func testConfig(baseURL string) types.FeedConfig {
	cfg := types.DefaultFeedConfig()
	cfg.BaseURL = baseURL
	cfg.Timeout = 5 * time.Second
	cfg.UserAgent = "test/0.1"
	return cfg
}

// --- Parse ---

func TestParse_ExtractsFields(t *testing.T) {
	res, err := Parse([]byte(sampleFeed))
	require.NoError(t, err)
	require.Len(t, res.Papers, 2)
	assert.Empty(t, res.Skipped)

	p := res.Papers[0]
	assert.Equal(t, "2501.01234v1", p.ID)
	assert.Equal(t, "Scaling Laws for   Sparse Models", p.Title)
	assert.Equal(t, "2025-01-15", p.Published)
	assert.Equal(t, "We study scaling. Results follow.", p.Summary)
	assert.Equal(t, []string{"Alice Smith", "Bob Jones"}, p.Authors)
	assert.Equal(t, "cs.LG", p.Category)
	assert.Equal(t, "https://arxiv.org/abs/2501.01234v1", p.URL)
}

func TestParse_MissingTermDefaultsToUnknown(t *testing.T) {
	res, err := Parse([]byte(sampleFeed))
	require.NoError(t, err)
	require.Len(t, res.Papers, 2)

	assert.Equal(t, types.UnknownCategory, res.Papers[1].Category)
}

func TestParse_SkipsEntriesMissingFields(t *testing.T) {
	entry := func(omit string) string {
		parts := map[string]string{
			"id":        `<id>http://arxiv.org/abs/1</id>`,
			"title":     `<title>T</title>`,
			"published": `<published>2025-01-01T00:00:00Z</published>`,
			"summary":   `<summary>S</summary>`,
			"author":    `<author><name>A</name></author>`,
			"category":  `<category term="cs.AI"/>`,
		}
		if omit == "author name" {
			parts["author"] = `<author><email>a@example.com</email></author>`
		} else {
			delete(parts, omit)
		}
		var b strings.Builder
		b.WriteString("<entry>")
		for _, k := range []string{"id", "title", "published", "summary", "author", "category"} {
			b.WriteString(parts[k])
		}
		b.WriteString("</entry>")
		return b.String()
	}

	tests := []struct {
		omit string
	}{
		{"id"}, {"title"}, {"published"}, {"summary"}, {"category"}, {"author name"},
	}
	for _, tt := range tests {
		t.Run(tt.omit, func(t *testing.T) {
			payload := `<feed xmlns="http://www.w3.org/2005/Atom">` +
				entry("") + entry(tt.omit) + entry("") + `</feed>`

			res, err := Parse([]byte(payload))
			require.NoError(t, err)

			assert.Len(t, res.Papers, 2, "one fewer paper than entries")
			require.Len(t, res.Skipped, 1)
			assert.Equal(t, 1, res.Skipped[0].Index)
			assert.Equal(t, tt.omit, res.Skipped[0].Field)
		})
	}
}

func TestParse_EmptyTextCountsAsMissing(t *testing.T) {
	payload := `<feed xmlns="http://www.w3.org/2005/Atom"><entry>
		<id>http://arxiv.org/abs/1</id><title></title>
		<published>2025-01-01T00:00:00Z</published><summary>S</summary>
		<category term="cs.AI"/></entry></feed>`

	res, err := Parse([]byte(payload))
	require.NoError(t, err)
	assert.Empty(t, res.Papers)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "title", res.Skipped[0].Field)
}

func TestParse_NoAuthorsIsAllowed(t *testing.T) {
	payload := `<feed xmlns="http://www.w3.org/2005/Atom"><entry>
		<id>http://arxiv.org/abs/1</id><title>T</title>
		<published>2025-01-01T00:00:00Z</published><summary>S</summary>
		<category term="cs.AI"/></entry></feed>`

	res, err := Parse([]byte(payload))
	require.NoError(t, err)
	require.Len(t, res.Papers, 1)
	assert.Empty(t, res.Papers[0].Authors)
}

func TestParse_IgnoresOtherNamespaces(t *testing.T) {
	payload := `<feed xmlns="http://example.com/not-atom"><entry>
		<id>http://arxiv.org/abs/1</id><title>T</title>
		<published>2025-01-01T00:00:00Z</published><summary>S</summary>
		<category term="cs.AI"/></entry></feed>`

	res, err := Parse([]byte(payload))
	require.NoError(t, err)
	assert.Empty(t, res.Papers)
	assert.Empty(t, res.Skipped)
}

func TestParse_InvalidXML(t *testing.T) {
	_, err := Parse([]byte("this is not xml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing arXiv response")
}

func TestParse_EmptyFeed(t *testing.T) {
	res, err := Parse([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
	require.NoError(t, err)
	assert.Empty(t, res.Papers)
	assert.NotNil(t, res.Papers)
}

func TestExtractID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041v1"},
		{"http://arxiv.org/abs/hep-th/9901001v3", "hep-th/9901001v3"},
		{"2301.07041", "2301.07041"},
		{"http://arxiv.org/abs/", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractID(tt.in))
		})
	}
}

func TestDatePrefix(t *testing.T) {
	assert.Equal(t, "2025-01-15", datePrefix("2025-01-15T18:59:59Z"))
	assert.Equal(t, "2025", datePrefix("2025"))
}

// --- Client ---

func TestSearchQuery(t *testing.T) {
	got := SearchQuery([]string{"cat:cs.AI", "cat:cs.LG", "cat:stat.ML"})
	assert.Equal(t, "(cat:cs.AI OR cat:cs.LG OR cat:stat.ML)", got)
}

func TestFetch_QueryParameters(t *testing.T) {
	var got url.Values
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer ts.Close()

	var progress bytes.Buffer
	c := NewClient(testConfig(ts.URL), &progress)

	body, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleFeed, string(body))

	assert.Equal(t, "(cat:cs.AI OR cat:cs.LG OR cat:stat.ML)", got.Get("search_query"))
	assert.Equal(t, "0", got.Get("start"))
	assert.Equal(t, "100", got.Get("max_results"))
	assert.Equal(t, "submittedDate", got.Get("sortBy"))
	assert.Equal(t, "descending", got.Get("sortOrder"))
	assert.Equal(t, "test/0.1", gotUA)
	assert.Contains(t, progress.String(), "Fetching papers from: ")
}

func TestFetch_BadStatusCode(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(testConfig(ts.URL), nil)
	body, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Nil(t, body)
	assert.ErrorIs(t, err, httputil.ErrUnexpectedStatus)
}

func TestFetch_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL)
	cfg.Timeout = 50 * time.Millisecond
	c := NewClient(cfg, nil)

	_, err := c.Fetch(context.Background())
	assert.Error(t, err)
}

func TestNewClient_UsesConfiguredTimeout(t *testing.T) {
	c := NewClient(types.DefaultFeedConfig(), nil)
	assert.Equal(t, 30*time.Second, c.HTTP.Timeout)
}

func TestQueryURL_TruncatedInProgress(t *testing.T) {
	var progress bytes.Buffer
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
	}))
	defer ts.Close()

	c := NewClient(testConfig(ts.URL), &progress)
	_, err := c.Fetch(context.Background())
	require.NoError(t, err)

	line := strings.TrimSuffix(strings.TrimPrefix(progress.String(), "Fetching papers from: "), "...\n")
	assert.LessOrEqual(t, len(line), 80)
	assert.True(t, strings.HasPrefix(c.QueryURL(), line))
}

func TestFetch_SpacesRepeatedRequests(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Write([]byte(sampleFeed))
	}))
	defer ts.Close()

	c := NewClient(testConfig(ts.URL), nil)
	_, err := c.Fetch(context.Background())
	require.NoError(t, err)

	// The second request must wait RequestInterval, which outlasts this
	// deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = c.Fetch(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, hits)
}
