package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("photo_b-1.jpg"))
	for _, key := range []string{"", ".", "..", "../etc/passwd", `a\b`, "dir/photo.jpg"} {
		assert.ErrorIs(t, ValidateKey(key), ErrInvalidKey, key)
	}
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "http://localhost:5000/uploads/photo.jpg", JoinURL("http://localhost:5000/uploads/", "photo.jpg"))
	assert.Equal(t, "/uploads/photo.jpg", JoinURL("/uploads", "photo.jpg"))
}
