package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	key, err := s.Upload(ctx, bytes.NewBufferString("hello"), "documents/emp-1/./cv.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "documents/emp-1/cv.pdf", key)

	url, err := s.GetURL(ctx, key, 0)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/documents/emp-1/cv.pdf", url)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "hello", string(body))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Download(ctx, key)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorage_ConfinesKeys(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	key, err := s.Upload(context.Background(), bytes.NewBufferString("x"), "../../etc/passwd", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "etc/passwd", key)

	_, err = s.Upload(context.Background(), bytes.NewBufferString("x"), "..", "text/plain")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
