// Package codec содержит потоковые компрессоры ответа и реестр их фабрик.
// Каждый экземпляр кодека обслуживает ровно один ответ: он накапливает
// состояние между фрагментами, а Flush завершает поток и делает кодек
// непригодным для дальнейшего использования.
package codec

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// Codec — инкрементальный компрессор с внутренним состоянием.
// Compress может вернуть пустой результат, если кодек отложил вывод
// во внутреннем буфере; байты никогда не переупорядочиваются и не теряются.
// Пустой вход допустим для обеих операций.
type Codec interface {
	// Compress сжимает очередной фрагмент и возвращает готовую часть вывода.
	Compress(p []byte) ([]byte, error)
	// Flush дописывает остаток сжатого потока и закрывает его.
	// После Flush кодек использовать нельзя.
	Flush() ([]byte, error)
}

// writerCodec адаптирует компрессоры с интерфейсом io.WriteCloser
// (gzip, deflate, brotli, zstd) к контракту Codec: компрессор пишет
// в буфер, а Compress/Flush забирают из него накопившийся вывод.
type writerCodec struct {
	buf bytes.Buffer
	zw  io.WriteCloser
}

func (c *writerCodec) Compress(p []byte) ([]byte, error) {
	if len(p) == 0 {
		return nil, nil
	}
	if _, err := c.zw.Write(p); err != nil {
		return nil, err
	}
	return c.drain(), nil
}

func (c *writerCodec) Flush() ([]byte, error) {
	if err := c.zw.Close(); err != nil {
		return nil, err
	}
	return c.drain(), nil
}

// drain возвращает копию накопленного вывода и очищает буфер.
// Копия нужна: bytes.Buffer переиспользует свой массив при следующей записи.
func (c *writerCodec) drain() []byte {
	if c.buf.Len() == 0 {
		return nil
	}
	out := make([]byte, c.buf.Len())
	copy(out, c.buf.Bytes())
	c.buf.Reset()
	return out
}

// NewGzip создаёт gzip-кодек с заданным уровнем сжатия.
func NewGzip(level int) (Codec, error) {
	c := &writerCodec{}
	zw, err := gzip.NewWriterLevel(&c.buf, level)
	if err != nil {
		return nil, err
	}
	c.zw = zw
	return c, nil
}

// NewDeflate создаёт deflate-кодек (сырой поток, без zlib-обёртки).
func NewDeflate(level int) (Codec, error) {
	c := &writerCodec{}
	zw, err := flate.NewWriter(&c.buf, level)
	if err != nil {
		return nil, err
	}
	c.zw = zw
	return c, nil
}
