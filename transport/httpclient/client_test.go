package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSendsBrowserHeadersAndBody(t *testing.T) {
	var gotBody []byte
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotHeaders = r.Header
		w.Header().Set("Set-Cookie", "NID=abc123; Path=/")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("response-bytes"))
	}))
	defer server.Close()

	client, err := New("", time.Second, 5*time.Second)
	require.NoError(t, err)

	resp, status, err := client.Do(context.Background(), http.MethodPost, server.URL, ContentTypePblite, []byte("payload"), map[string]string{"Cookie": "SAPISID=x"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []byte("response-bytes"), resp)
	assert.Equal(t, []byte("payload"), gotBody)
	assert.Equal(t, ContentTypePblite, gotHeaders.Get("Content-Type"))
	assert.NotEmpty(t, gotHeaders.Get("User-Agent"))
	assert.Equal(t, "SAPISID=x", gotHeaders.Get("Cookie"))
}

func TestOpenStreamRejectsNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client, err := New("", time.Second, 5*time.Second)
	require.NoError(t, err)

	_, status, err := client.OpenStream(context.Background(), server.URL, ContentTypePblite, nil, nil)
	assert.Error(t, err)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestOpenStreamReturnsReadableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("[[stream-data]]"))
	}))
	defer server.Close()

	client, err := New("", time.Second, 5*time.Second)
	require.NoError(t, err)

	stream, status, err := client.OpenStream(context.Background(), server.URL, ContentTypePblite, nil, nil)
	require.NoError(t, err)
	defer stream.Close()
	assert.Equal(t, http.StatusOK, status)

	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "[[stream-data]]", string(data))
}

func TestBuildAuthHeadersWithSAPISID(t *testing.T) {
	headers := BuildAuthHeaders(map[string]string{"SAPISID": "secret", "other": "x"}, "https://messages.google.com")
	assert.Contains(t, headers["Authorization"], "SAPISIDHASH ")
	assert.Contains(t, headers["Cookie"], "SAPISID=secret")
}

func TestBuildAuthHeadersWithoutSAPISID(t *testing.T) {
	headers := BuildAuthHeaders(map[string]string{"other": "x"}, "https://messages.google.com")
	_, hasAuth := headers["Authorization"]
	assert.False(t, hasAuth)
	assert.Contains(t, headers["Cookie"], "other=x")
}

func TestResponseContentTypeFallsBackToProtobuf(t *testing.T) {
	assert.Equal(t, false, ResponseContentType("").IsPblite())
	assert.Equal(t, true, ResponseContentType("application/json+protobuf").IsPblite())
	assert.Equal(t, true, ResponseContentType("text/plain; charset=utf-8").IsPblite())
}
