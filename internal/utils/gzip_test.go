package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGzip_RoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("collection ", 100))

	compressed, err := Gzip(data)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(data))

	out, err := Gunzip(bytes.NewReader(compressed), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestGunzip_TooLarge(t *testing.T) {
	compressed, err := Gzip(bytes.Repeat([]byte{'a'}, 1024))
	require.NoError(t, err)

	_, err = Gunzip(bytes.NewReader(compressed), 1023)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestGunzip_NotGzip(t *testing.T) {
	_, err := Gunzip(strings.NewReader("plain"), 0)
	assert.Error(t, err)
}

func TestReadAllLimited_NoLimit(t *testing.T) {
	out, err := ReadAllLimited(strings.NewReader("abc"), 0)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))
}
