package codec

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decompress распаковывает данные соответствующим токену декодером.
func decompress(t *testing.T, token string, data []byte) []byte {
	t.Helper()

	var (
		r   io.Reader
		err error
	)
	switch token {
	case "gzip":
		r, err = gzip.NewReader(bytes.NewReader(data))
		require.NoError(t, err)
	case "deflate":
		r = flate.NewReader(bytes.NewReader(data))
	case "br":
		r = brotli.NewReader(bytes.NewReader(data))
	case "zstd":
		zr, zerr := zstd.NewReader(bytes.NewReader(data))
		require.NoError(t, zerr)
		defer zr.Close()
		r = zr
	default:
		t.Fatalf("unknown token %q", token)
	}

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return out
}

func newCodec(t *testing.T, token string) Codec {
	t.Helper()

	levels := DefaultLevels()
	var (
		c   Codec
		err error
	)
	switch token {
	case "gzip":
		c, err = NewGzip(levels.Gzip)
	case "deflate":
		c, err = NewDeflate(levels.Deflate)
	case "br":
		c, err = NewBrotli(levels.Brotli)
	case "zstd":
		c, err = NewZstd(levels.Zstd)
	default:
		t.Fatalf("unknown token %q", token)
	}
	require.NoError(t, err)
	return c
}

var allTokens = []string{"gzip", "deflate", "br", "zstd"}

func TestCodecRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("Hello, compression! ", 200))

	// Результат распаковки не должен зависеть от разбиения входа на фрагменты.
	chunkSizes := []int{1, 7, 333, len(payload)}

	for _, token := range allTokens {
		for _, size := range chunkSizes {
			c := newCodec(t, token)

			var compressed []byte
			for off := 0; off < len(payload); off += size {
				end := off + size
				if end > len(payload) {
					end = len(payload)
				}
				out, err := c.Compress(payload[off:end])
				require.NoError(t, err)
				compressed = append(compressed, out...)
			}

			flushed, err := c.Flush()
			require.NoError(t, err)
			compressed = append(compressed, flushed...)

			assert.Equal(t, payload, decompress(t, token, compressed),
				"token=%s chunk=%d", token, size)
			assert.NotEqual(t, payload, compressed)
		}
	}
}

func TestCodecEmptyInput(t *testing.T) {
	for _, token := range allTokens {
		c := newCodec(t, token)

		out, err := c.Compress(nil)
		require.NoError(t, err)
		assert.Empty(t, out)

		flushed, err := c.Flush()
		require.NoError(t, err)

		assert.Empty(t, decompress(t, token, append(out, flushed...)))
	}
}

func TestCodecIncremental(t *testing.T) {
	part1 := []byte("This is the first part. ")
	part2 := []byte("This is the second part.")

	for _, token := range allTokens {
		c := newCodec(t, token)

		out1, err := c.Compress(part1)
		require.NoError(t, err)
		out2, err := c.Compress(part2)
		require.NoError(t, err)
		flushed, err := c.Flush()
		require.NoError(t, err)

		full := append(append(out1, out2...), flushed...)
		assert.Equal(t, append(part1, part2...), decompress(t, token, full))
	}
}

func BenchmarkGzipCompress(b *testing.B) {
	payload := bytes.Repeat([]byte("A"), 4096)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c, err := NewGzip(6)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := c.Compress(payload); err != nil {
			b.Fatal(err)
		}
		if _, err := c.Flush(); err != nil {
			b.Fatal(err)
		}
	}
}
