package portalhttp

import (
	"embed"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wailsapp/mimetype"
)

//go:embed static
var staticFS embed.FS

func (httpserver *HttpServer) serveStatic(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if name == "" || strings.Contains(name, "..") {
		http.NotFound(w, r)
		return
	}
	data, err := fs.ReadFile(staticFS, path.Join("static", name))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentType(name, data))
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(data)
}

// contentType sniffs the asset. Scripts and stylesheets sniff as plain
// text, so for those the extension decides.
func contentType(name string, data []byte) string {
	detected := mimetype.Detect(data)
	if !detected.Is("text/plain") && !detected.Is("application/octet-stream") {
		return detected.String()
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return detected.String()
}

func (httpserver *HttpServer) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
