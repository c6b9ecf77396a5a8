package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractLinks(t *testing.T) {
	t.Run("resolves relative hrefs against the page url", func(t *testing.T) {
		html := `<html><body>
			<a href="/docs/guide">Guide</a>
			<a href="pricing">Pricing</a>
			<a href="https://other.com/external">External</a>
		</body></html>`
		links, err := ExtractLinks([]byte(html), "https://example.com/docs/")
		require.NoError(t, err)
		require.Contains(t, links, "https://example.com/docs/guide")
		require.Contains(t, links, "https://example.com/docs/pricing")
		require.Contains(t, links, "https://other.com/external")
	})

	t.Run("collects link elements too", func(t *testing.T) {
		html := `<html><head><link href="/feed.xml" rel="alternate"></head></html>`
		links, err := ExtractLinks([]byte(html), "https://example.com/")
		require.NoError(t, err)
		require.Contains(t, links, "https://example.com/feed.xml")
	})

	t.Run("skips empty hrefs", func(t *testing.T) {
		html := `<html><body><a href="">empty</a><a>no href</a></body></html>`
		links, err := ExtractLinks([]byte(html), "https://example.com/")
		require.NoError(t, err)
		require.Empty(t, links)
	})

	t.Run("page with no links yields empty slice", func(t *testing.T) {
		links, err := ExtractLinks([]byte("<html><body><p>hello</p></body></html>"), "https://example.com/")
		require.NoError(t, err)
		require.Empty(t, links)
	})

	t.Run("bad page url fails", func(t *testing.T) {
		_, err := ExtractLinks([]byte("<html></html>"), "ht tp://%zz")
		require.Error(t, err)
	})
}
