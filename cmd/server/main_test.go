package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sol1corejz/go-http-compress/internal/codec"
	"github.com/sol1corejz/go-http-compress/internal/middlewares"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	registry, err := codec.NewRegistry([]string{"gzip", "deflate", "br", "zstd"}, codec.DefaultLevels())
	require.NoError(t, err)

	cfg, err := middlewares.NewCompressConfig(registry, 500, nil, []string{"text/event-stream"})
	require.NoError(t, err)

	ts := httptest.NewServer(newRouter(cfg))
	t.Cleanup(ts.Close)
	return ts
}

// testRequest выполняет запрос с заданным Accept-Encoding и возвращает
// ответ вместе с сырым (не распакованным транспортом) телом.
func testRequest(t *testing.T, ts *httptest.Server, path, acceptEncoding string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	if acceptEncoding != "" {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	// Транспорт не должен сам договариваться о сжатии и распаковывать тело.
	client := &http.Client{Transport: &http.Transport{DisableCompression: true}}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, body
}

func gunzip(t *testing.T, data []byte) []byte {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	out, err := io.ReadAll(zr)
	require.NoError(t, err)
	return out
}

func TestServerSmallResponseNotCompressed(t *testing.T) {
	ts := newTestServer(t)

	resp, body := testRequest(t, ts, "/small", "gzip")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Content-Encoding"))
	assert.Equal(t, "tiny", string(body))
}

func TestServerLargeResponseCompressed(t *testing.T) {
	ts := newTestServer(t)

	resp, body := testRequest(t, ts, "/large", "gzip")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
	assert.Contains(t, resp.Header.Get("Vary"), "Accept-Encoding")

	// Точный Content-Length соответствует фактически переданному телу.
	assert.Equal(t, strconv.Itoa(len(body)), resp.Header.Get("Content-Length"))
	assert.Equal(t, strings.Repeat("A", 1000), string(gunzip(t, body)))
}

func TestServerStreamResponseCompressedChunked(t *testing.T) {
	ts := newTestServer(t)

	resp, body := testRequest(t, ts, "/stream", "gzip")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

	// Потоковый ответ уходит без Content-Length, транспорт выбирает chunked.
	assert.Empty(t, resp.Header.Get("Content-Length"))
	assert.Equal(t, strings.Repeat(strings.Repeat("chunk ", 100), 3), string(gunzip(t, body)))
}

func TestServerPreEncodedResponseUntouched(t *testing.T) {
	ts := newTestServer(t)

	resp, body := testRequest(t, ts, "/encoded", "gzip")

	assert.Equal(t, "identity", resp.Header.Get("Content-Encoding"))
	assert.Equal(t, strings.Repeat("encoded by handler ", 100), string(body))
}

func TestServerEventStreamExcluded(t *testing.T) {
	ts := newTestServer(t)

	resp, body := testRequest(t, ts, "/events", "gzip")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Content-Encoding"))
	assert.True(t, bytes.HasPrefix(body, []byte("data: ")))
}

func TestServerNoAcceptEncoding(t *testing.T) {
	ts := newTestServer(t)

	resp, body := testRequest(t, ts, "/large", "")

	assert.Empty(t, resp.Header.Get("Content-Encoding"))
	assert.Equal(t, strings.Repeat("A", 1000), string(body))
}

func TestServerPing(t *testing.T) {
	ts := newTestServer(t)

	resp, body := testRequest(t, ts, "/ping", "gzip")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))
}
