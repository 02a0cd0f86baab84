package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestURL_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "not-a-valid-url", "example.com", "http://", "ftp://example.com/job"} {
		t.Run(u, func(t *testing.T) {
			_, err := URL(context.Background(), u, nil)
			var fetchErr *Error
			require.ErrorAs(t, err, &fetchErr)
			assert.Contains(t, err.Error(), "invalid URL")
		})
	}
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_BodyIsCapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", MaxBodyBytes+100)))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Len(t, result.HTML, MaxBodyBytes)
}

func TestExtractMainText_RemovesNoise(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Navigation</nav>
			<main>
				<h1>Main Content</h1>
				<p>This is the   important text.</p>
			</main>
			<footer>Footer</footer>
		</body>
	</html>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Main Content\nThis is the important text.", text)
}

func TestExtractMainText_ListItemsBecomeBullets(t *testing.T) {
	html := `
	<html><body>
		<div class="sidebar">Sidebar junk</div>
		<div class="job-description">
			<h2>Requirements</h2>
			<ul><li>5 years experience in Go</li><li>Kubernetes</li><li></li></ul>
			<p>Apply<br>today</p>
		</div>
		<form id="application-form">Name</form>
	</body></html>`

	text, err := ExtractMainText(html, JobPostingSelectors(), PlatformNoiseSelectors(PlatformUnknown)...)
	require.NoError(t, err)
	assert.Equal(t, "Requirements\n- 5 years experience in Go\n- Kubernetes\nApply\ntoday", text)
}

func TestExtractMainText_FallbackToBody(t *testing.T) {
	text, err := ExtractMainText(`<html><body><div>Some content here.</div></body></html>`, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Some content here.", text)
}

func TestPageTitle(t *testing.T) {
	assert.Equal(t, "Staff Engineer - Acme", PageTitle(`<html><head><title> Staff Engineer - Acme </title></head></html>`))
	assert.Equal(t, "", PageTitle(`<html><body>none</body></html>`))
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("  short  "))
	assert.False(t, ShouldUseBrowser(strings.Repeat("x", MinContentLength)))
}

func TestHydrationSelector(t *testing.T) {
	assert.Equal(t, "", hydrationSelector(PlatformUnknown))
	assert.Equal(t, ".posting-page", hydrationSelector(PlatformLever))
	assert.Equal(t, "[data-automation-id='jobDescription']", hydrationSelector(PlatformWorkday))
}
