package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractOriginHost(t *testing.T) {
	tests := []struct {
		origin string
		want   string
	}{
		{"https://app.example.com", "app.example.com"},
		{"http://localhost:3000", "localhost:3000"},
		{"https://example.com:8443", "example.com:8443"},
		{"not a url", "not a url"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractOriginHost(tt.origin), "origin %q", tt.origin)
	}
}

func TestMatchOriginPattern(t *testing.T) {
	tests := []struct {
		pattern string
		host    string
		want    bool
	}{
		{"example.com", "example.com", true},
		{"example.com", "evil.com", false},
		{"*.example.com", "app.example.com", true},
		{"*.example.com", "a.b.example.com", true},
		{"*.example.com", "example.com", false},
		{"*.example.com", "badexample.com", false},
		{"localhost:3000", "localhost:3000", true},
		{"localhost:3000", "localhost:4000", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchOriginPattern(tt.pattern, tt.host), "%q vs %q", tt.pattern, tt.host)
	}
}
