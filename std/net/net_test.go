package net

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, userAgent, r.UserAgent())
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte("p { color: red }"))
	}))
	defer srv.Close()

	body, contentType, err := FetchContext(context.Background(), srv.URL+"/site.css")
	require.NoError(t, err)
	assert.Equal(t, "p { color: red }", string(body))
	assert.Equal(t, "text/css", contentType)

	_, _, err = FetchContext(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "HTTP 404")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = FetchContext(ctx, srv.URL+"/site.css")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "https://example.com/a/img.png", ResolveURL("https://example.com/a/page.html", "img.png"))
	assert.Equal(t, "https://cdn.test/x.css", ResolveURL("https://example.com/", "https://cdn.test/x.css"))
	assert.Equal(t, "file:///tmp/site/style.css", ResolveURL("file:///tmp/site/index.html", "style.css"))
}

func TestDecodeDataURL(t *testing.T) {
	body, contentType, err := DecodeDataURL("data:text/css;base64,cCB7IH0=")
	require.NoError(t, err)
	assert.Equal(t, "p { }", string(body))
	assert.Equal(t, "text/css", contentType)

	body, contentType, err = DecodeDataURL("data:,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(body))
	assert.Equal(t, "text/plain;charset=US-ASCII", contentType)

	_, _, err = DecodeDataURL("data:text/plain")
	assert.Error(t, err)
	assert.False(t, IsDataURL("https://example.com"))
	assert.True(t, IsNetworkURL("https://example.com"))
}
