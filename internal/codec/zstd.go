package codec

import (
	"github.com/klauspost/compress/zstd"
)

// NewZstd создаёт zstd-кодек. Уровень соответствует уровням эталонной
// реализации zstd (1-22), внутри он отображается на уровни библиотеки.
func NewZstd(level int) (Codec, error) {
	if level < 1 || level > 22 {
		return nil, errInvalidLevel("zstd", level)
	}
	c := &writerCodec{}
	// Один кодек обслуживает один ответ, поэтому параллельное кодирование
	// внутри энкодера не нужно и только расходует память.
	zw, err := zstd.NewWriter(&c.buf,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, err
	}
	c.zw = zw
	return c, nil
}
