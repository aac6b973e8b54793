package urlcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidURL(t *testing.T) {
	assert.True(t, IsValidURL("http://example.com"))
	assert.True(t, IsValidURL("HTTPS://example.com/a?b=c"))
	assert.False(t, IsValidURL("ftp://example.com"))
	assert.False(t, IsValidURL("http://"))
	assert.False(t, IsValidURL("example.com"))
	assert.False(t, IsValidURL("://bad"))
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "http://example.com", NormalizeURL(" example.com "))
	assert.Equal(t, "https://example.com", NormalizeURL("https://example.com"))
	assert.Equal(t, "", NormalizeURL("  "))
}

func TestExtractURLs(t *testing.T) {
	text := "Go to (https://a.example/x), or http://b.example. Again: https://a.example/x! mailto:me@x.org"
	assert.Equal(t, []string{"https://a.example/x", "http://b.example"}, ExtractURLs(text))
	assert.Nil(t, ExtractURLs("nothing here"))
}
