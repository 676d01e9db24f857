package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry([]string{"gzip", "BR", " zstd ", "deflate"}, DefaultLevels())
	require.NoError(t, err)

	// Токены нормализуются, порядок предпочтений сервера сохраняется.
	assert.Equal(t, []string{"gzip", "br", "zstd", "deflate"}, r.Available())

	factory, ok := r.Factory("br")
	require.True(t, ok)

	c, err := factory()
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, ok = r.Factory("identity")
	assert.False(t, ok)
}

func TestNewRegistryErrors(t *testing.T) {
	tests := []struct {
		name   string
		order  []string
		levels Levels
	}{
		{name: "empty list", order: nil, levels: DefaultLevels()},
		{name: "unknown encoding", order: []string{"gzip", "lzma"}, levels: DefaultLevels()},
		{name: "duplicate encoding", order: []string{"gzip", "gzip"}, levels: DefaultLevels()},
		{name: "bad gzip level", order: []string{"gzip"}, levels: Levels{Gzip: 99}},
		{name: "bad brotli level", order: []string{"br"}, levels: Levels{Brotli: -1}},
		{name: "bad zstd level", order: []string{"zstd"}, levels: Levels{Zstd: 0}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewRegistry(test.order, test.levels)
			assert.Error(t, err)
		})
	}
}

func TestRegistryFactoryProducesFreshInstances(t *testing.T) {
	r, err := NewRegistry([]string{"gzip"}, DefaultLevels())
	require.NoError(t, err)

	factory, ok := r.Factory("gzip")
	require.True(t, ok)

	// Каждый ответ получает собственный экземпляр кодека.
	first, err := factory()
	require.NoError(t, err)
	second, err := factory()
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}
