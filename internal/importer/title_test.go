package importer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleFetcher(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/titled", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><head><title>\n  Hello   World \n</title></head></html>"))
	})
	mux.HandleFunc("/og", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><meta property="og:title" content="Open Graph"></head></html>`))
	})
	mux.HandleFunc("/untitled", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>nothing</body></html>"))
	})
	mux.HandleFunc("/missing", http.NotFound)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewTitleFetcher()
	ctx := context.Background()

	title, err := f.Title(ctx, srv.URL+"/titled")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", title)

	title, err = f.Title(ctx, srv.URL+"/og")
	require.NoError(t, err)
	assert.Equal(t, "Open Graph", title)

	_, err = f.Title(ctx, srv.URL+"/untitled")
	assert.Error(t, err)

	_, err = f.Title(ctx, srv.URL+"/missing")
	assert.Error(t, err)

	assert.Equal(t, srv.URL+"/missing", f.TitleOrURL(ctx, srv.URL+"/missing"))
}
