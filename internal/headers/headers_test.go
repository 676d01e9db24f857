package headers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sol1corejz/go-http-compress/internal/models"
)

func TestGet(t *testing.T) {
	hs := []models.Header{
		{Name: "Content-Type", Value: "text/plain"},
		{Name: "X-Custom", Value: "one"},
		{Name: "x-custom", Value: "two"},
	}

	tests := []struct {
		name      string
		header    string
		want      string
		wantFound bool
	}{
		{name: "exact case", header: "Content-Type", want: "text/plain", wantFound: true},
		{name: "different case", header: "content-type", want: "text/plain", wantFound: true},
		{name: "first duplicate wins", header: "X-CUSTOM", want: "one", wantFound: true},
		{name: "missing", header: "Content-Length", want: "", wantFound: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, found := Get(hs, test.header)
			assert.Equal(t, test.wantFound, found)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestSet(t *testing.T) {
	hs := []models.Header{{Name: "Content-Length", Value: "100"}}

	hs = Set(hs, "content-length", "42")
	assert.Equal(t, []models.Header{{Name: "Content-Length", Value: "42"}}, hs)

	hs = Set(hs, "Content-Encoding", "gzip")
	assert.Equal(t, models.Header{Name: "Content-Encoding", Value: "gzip"}, hs[1])
}

func TestRemove(t *testing.T) {
	hs := []models.Header{
		{Name: "Content-Length", Value: "100"},
		{Name: "Content-Type", Value: "text/plain"},
		{Name: "content-length", Value: "200"},
	}

	hs = Remove(hs, "Content-Length")
	assert.Equal(t, []models.Header{{Name: "Content-Type", Value: "text/plain"}}, hs)

	// Удаление отсутствующего заголовка ничего не меняет.
	hs = Remove(hs, "Vary")
	assert.Len(t, hs, 1)
}

func TestMergeVary(t *testing.T) {
	tests := []struct {
		name string
		in   []models.Header
		want string
	}{
		{
			name: "no vary header",
			in:   []models.Header{{Name: "Content-Type", Value: "text/plain"}},
			want: "Accept-Encoding",
		},
		{
			name: "existing other value",
			in:   []models.Header{{Name: "Vary", Value: "Origin"}},
			want: "Origin, Accept-Encoding",
		},
		{
			name: "already present",
			in:   []models.Header{{Name: "Vary", Value: "accept-encoding"}},
			want: "accept-encoding",
		},
		{
			name: "present among others",
			in:   []models.Header{{Name: "vary", Value: "Origin, Accept-Encoding"}},
			want: "Origin, Accept-Encoding",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := MergeVary(test.in, "Accept-Encoding")
			value, found := Get(got, "Vary")
			assert.True(t, found)
			assert.Equal(t, test.want, value)
		})
	}
}

func TestClone(t *testing.T) {
	hs := []models.Header{{Name: "Content-Type", Value: "text/plain"}}
	cloned := Clone(hs)

	cloned[0].Value = "application/json"
	assert.Equal(t, "text/plain", hs[0].Value)
}
