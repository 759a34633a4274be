package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeedEngager/internal/source"
)

const snapshotHTML = `
<html><body>
  <div class="feed-item" data-ids="urn:item:20, urn:item:7" data-author="alice-key"
       data-age-hours="3.5" data-promoted="false" data-friend-activity="false">
    <div class="author-name">Alice Chen</div>
    <div class="author-bio">Staff engineer. Coffee first.</div>
    <div class="item-content">We just shipped the new pipeline!</div>
    <div class="thread-context">Replying to the launch thread.</div>
  </div>
  <div class="feed-item" data-ids="urn:item:9" data-promoted="true">
    <div class="author-name">Acme Corp</div>
    <div class="author-bio">5,000 followers</div>
    <div class="item-content">Sponsored: try our product.</div>
  </div>
  <div class="feed-item" data-ids="">
    <div class="item-content">orphan item without ids</div>
  </div>
  <div class="feed-item" data-ids="urn:item:11">
    <div class="item-content">   </div>
  </div>
</body></html>`

func TestParseItem(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snapshotHTML))
	require.NoError(t, err)

	candidate, err := parseItem(doc.Find("div.feed-item").First())
	require.NoError(t, err)

	assert.Equal(t, []string{"urn:item:20", "urn:item:7"}, candidate.Aliases)
	assert.Equal(t, "urn:item:20", candidate.CanonicalAlias())
	assert.Equal(t, "alice-key", candidate.AuthorKey)
	assert.Equal(t, "Alice Chen", candidate.AuthorName)
	assert.Equal(t, "We just shipped the new pipeline!", candidate.Content)
	assert.Equal(t, "Replying to the launch thread.", candidate.ThreadContext)
	require.NotNil(t, candidate.AgeHours)
	assert.InDelta(t, 3.5, *candidate.AgeHours, 0.001)
	assert.False(t, candidate.Promoted)
}

func TestParseItemUnknownAgeStaysNil(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snapshotHTML))
	require.NoError(t, err)

	candidate, err := parseItem(doc.Find("div.feed-item").Eq(1))
	require.NoError(t, err)

	assert.Nil(t, candidate.AgeHours, "missing age must stay unknown, not default to zero")
	assert.True(t, candidate.Promoted)
	assert.Equal(t, "Acme Corp", candidate.AuthorKey, "author name backfills a missing key")
}

func TestListSkipsMalformedItems(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(snapshotHTML))
	}))
	defer server.Close()

	scanner := NewSnapshotScanner(server.Client(), nil, server.URL)
	candidates, err := scanner.List(context.Background())
	require.NoError(t, err)

	require.Len(t, candidates, 2, "items without ids or content are dropped")
	assert.Equal(t, "urn:item:20", candidates[0].CanonicalAlias())
	assert.Equal(t, "urn:item:9", candidates[1].CanonicalAlias())
}

func TestListPropagatesHTTPFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	scanner := NewSnapshotScanner(server.Client(), nil, server.URL)
	_, err := scanner.List(context.Background())
	require.Error(t, err)
}

func TestBuilderRequiresURL(t *testing.T) {
	t.Parallel()

	builder := NewBuilder(nil, nil)
	assert.Equal(t, "snapshot", builder.Name())

	_, err := builder.Build(context.Background(), source.Spec{GroupID: "g"})
	require.Error(t, err)

	built, err := builder.Build(context.Background(), source.Spec{
		GroupID: "g",
		Options: map[string]string{"url": "http://localhost/snapshot"},
	})
	require.NoError(t, err)
	assert.NotNil(t, built)
}
