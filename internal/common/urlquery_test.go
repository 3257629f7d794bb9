package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestSetQueryParam(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		rawQuery string
		key      string
		value    *string
		want     string
	}{
		{"empty query", "/questions", "", "page", strPtr("2"), "/questions?page=2"},
		{"replace value", "/questions", "page=1&q=go", "page", strPtr("3"), "/questions?page=3&q=go"},
		{"keeps others sorted", "/", "?z=1&a=2", "m", strPtr("x"), "/?a=2&m=x&z=1"},
		{"nil drops key", "/tags", "filter=popular&page=2", "filter", nil, "/tags?page=2"},
		{"nil on missing key", "/tags", "", "filter", nil, "/tags"},
		{"empty value kept", "/", "", "q", strPtr(""), "/?q="},
		{"null params dropped", "/", "flag&page=1", "q", strPtr("go"), "/?page=1&q=go"},
		{"escaping", "/", "", "q", strPtr("go & pgx"), "/?q=go%20%26%20pgx"},
		{"literal plus", "/", "", "q", strPtr("c++ generics"), "/?q=c%2B%2B%20generics"},
		{"plus in raw query is a space", "/search", "q=go+pgx", "page", strPtr("2"), "/search?page=2&q=go%20pgx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SetQueryParam(tt.path, tt.rawQuery, tt.key, tt.value))
		})
	}
}

func TestRemoveQueryParams(t *testing.T) {
	tests := []struct {
		name     string
		rawQuery string
		keys     []string
		want     string
	}{
		{"remove one", "q=go&filter=new", []string{"q"}, "/community?filter=new"},
		{"remove all", "q=go&filter=new", []string{"q", "filter"}, "/community"},
		{"missing key", "q=go", []string{"page"}, "/community?q=go"},
		{"no keys", "b=2&a=1", nil, "/community?a=1&b=2"},
		{"empty query", "", []string{"q"}, "/community"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveQueryParams("/community", tt.rawQuery, tt.keys))
		})
	}
}
