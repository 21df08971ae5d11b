package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAbsoluteURL(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		base string
		want string
	}{
		{"absolute https", "https://cdn.example.com/a.jpg", "https://x.com/news/1", "https://cdn.example.com/a.jpg"},
		{"absolute http", "http://cdn.example.com/a.jpg", "https://x.com/news/1", "http://cdn.example.com/a.jpg"},
		{"root relative", "/a/b.jpg", "https://x.com/news/1", "https://x.com/a/b.jpg"},
		{"protocol relative", "//cdn.x.com/c.jpg", "https://x.com/news/1", "https://cdn.x.com/c.jpg"},
		{"path relative", "c.jpg", "https://x.com/news/1", "https://x.com/news/c.jpg"},
		{"path relative with trailing slash base", "c.jpg", "https://x.com/news/", "https://x.com/news/c.jpg"},
		{"path relative without base path", "c.jpg", "https://x.com", "https://x.com/c.jpg"},
		{"keeps port", "/img.png", "http://localhost:8080/page", "http://localhost:8080/img.png"},
		{"ignores base query", "img.png", "https://x.com/a/b?page=2", "https://x.com/a/img.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToAbsoluteURL(tt.base, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("rejects relative base", func(t *testing.T) {
		_, err := ToAbsoluteURL("/news/1", "c.jpg")
		assert.Error(t, err)
	})
}

func TestIsValidURL(t *testing.T) {
	assert.True(t, IsValidURL("https://example.com/article"))
	assert.True(t, IsValidURL("http://example.com"))
	assert.False(t, IsValidURL("ftp://example.com/file"))
	assert.False(t, IsValidURL("example.com/article"))
	assert.False(t, IsValidURL("https://"))
	assert.False(t, IsValidURL("https://exa mple.com/"))
	assert.False(t, IsValidURL(""))
}

func TestIsValidImageURL(t *testing.T) {
	assert.True(t, IsValidImageURL("https://cdn.example.com/a.jpg"))
	assert.True(t, IsValidImageURL("https://cdn.example.com/image/12345"))
	assert.True(t, IsValidImageURL("https://cdn.example.com/file.txt"))
	assert.False(t, IsValidImageURL("data:image/png;base64,AAAA"))
}

func TestHasImageExtension(t *testing.T) {
	assert.True(t, HasImageExtension("https://x.com/a.JPG"))
	assert.True(t, HasImageExtension("https://x.com/a.webp?w=100"))
	assert.False(t, HasImageExtension("https://x.com/image/1"))
}

func TestHashURL(t *testing.T) {
	assert.Equal(t, HashURL("https://x.com/a"), HashURL("https://x.com/a"))
	assert.NotEqual(t, HashURL("https://x.com/a"), HashURL("https://x.com/a/"))
	assert.Len(t, HashURL("https://x.com/a"), 64)
}
