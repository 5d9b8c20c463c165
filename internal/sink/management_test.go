package sink

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telllate/snipcast/internal/domain"
)

// testManagement binds a Management sink to a plain-HTTP test server.
func testManagement(t *testing.T, handler http.HandlerFunc) *Management {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &Management{base: server.URL + "/production", httpClient: server.Client()}
}

func TestManagement_PostsPayloadToConnectionPath(t *testing.T) {
	var gotPath, gotBody, gotContentType string
	sink := testManagement(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	})

	err := sink.Post(context.Background(), "abc123", []byte(`{"title":"Hi"}`))
	require.NoError(t, err)

	assert.Equal(t, "/production/@connections/abc123", gotPath)
	assert.Equal(t, `{"title":"Hi"}`, gotBody)
	assert.Equal(t, "application/json", gotContentType)
}

func TestManagement_GoneMapsToErrConnectionGone(t *testing.T) {
	sink := testManagement(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	})

	err := sink.Post(context.Background(), "stale", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrConnectionGone)
}

func TestManagement_OtherErrorStatus(t *testing.T) {
	sink := testManagement(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	err := sink.Post(context.Background(), "abc123", []byte("x"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConnectionGone)
	assert.Contains(t, err.Error(), "status 403")
}

func TestManagement_EscapesConnectionID(t *testing.T) {
	var gotPath string
	sink := testManagement(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, sink.Post(context.Background(), "a/b=c", []byte("x")))
	assert.Equal(t, "/production/@connections/a%2Fb=c", gotPath)
}

func TestNewManagement_BaseAddress(t *testing.T) {
	sink := NewManagement("ws.example.com", "production")
	assert.Equal(t, "https://ws.example.com/production", sink.base)
}
