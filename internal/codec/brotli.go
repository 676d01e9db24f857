package codec

import (
	"github.com/andybalholm/brotli"
)

// NewBrotli создаёт brotli-кодек. Уровень соответствует качеству brotli (0-11).
func NewBrotli(level int) (Codec, error) {
	if level < brotli.BestSpeed || level > brotli.BestCompression {
		return nil, errInvalidLevel("br", level)
	}
	c := &writerCodec{}
	c.zw = brotli.NewWriterLevel(&c.buf, level)
	return c, nil
}
