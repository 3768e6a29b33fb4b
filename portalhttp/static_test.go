package portalhttp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 8 8"></svg>`)

	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{"sniffed despite wrong extension", "logo.txt", png, "image/png"},
		{"sniffed without extension", "logo", png, "image/png"},
		{"svg sniffed", "icon", svg, "image/svg+xml"},
		{"script falls back to extension", "portal.js", []byte("(function () {})();"), "javascript"},
		{"stylesheet falls back to extension", "portal.css", []byte("body { margin: 0; }"), "text/css"},
		{"unknown text stays plain", "notes", []byte("hello"), "text/plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, contentType(tt.file, tt.data), tt.want)
		})
	}
}
