package compress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByName(t *testing.T) {
	payload := []byte(`{"nodes":[{"id":"people-1","label":"Alice"}],"edges":[]}`)

	for _, name := range []string{"", "nop", "gzip", "brotli", "lz4"} {
		codec, err := ByName(name)
		assert.NoError(t, err)

		encoded, err := codec.Encode(payload)
		assert.NoError(t, err)

		decoded, err := codec.Decode(encoded)
		assert.NoError(t, err)
		assert.Equal(t, payload, decoded, "codec %q", name)
	}

	_, err := ByName("zstd")
	assert.Error(t, err)
}

func TestNop_PassesThrough(t *testing.T) {
	codec := NewNop()

	encoded, err := codec.Encode([]byte("raw"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("raw"), encoded)
}

func TestGZip_Shrinks(t *testing.T) {
	codec := NewGZip()

	payload := make([]byte, 0, 4096)
	for i := 0; i < 128; i++ {
		payload = append(payload, []byte(`{"id":"people-1","type":"people"}`)...)
	}

	encoded, err := codec.Encode(payload)
	assert.NoError(t, err)
	assert.Less(t, len(encoded), len(payload))

	decoded, err := codec.Decode(encoded)
	assert.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestDecode_Garbage(t *testing.T) {
	for _, name := range []string{"gzip", "lz4"} {
		codec, err := ByName(name)
		assert.NoError(t, err)

		_, err = codec.Decode([]byte("definitely not compressed"))
		assert.Error(t, err, "codec %q", name)
	}
}
