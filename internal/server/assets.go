package server

import (
	"bytes"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

type asset struct {
	data        []byte
	contentType string
}

// assets serves the frontend from memory, minified once at startup.
type assets struct {
	files   map[string]asset
	modTime time.Time
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)
	return m
}

func mediaType(name string) string {
	switch path.Ext(name) {
	case ".html", ".htm":
		return "text/html"
	case ".css":
		return "text/css"
	case ".js", ".mjs":
		return "text/javascript"
	default:
		return ""
	}
}

// loadAssets reads every file of fsys, minifying html, css and js.
func loadAssets(fsys fs.FS) (*assets, error) {
	m := newMinifier()
	a := &assets{
		files:   make(map[string]asset),
		modTime: time.Now(),
	}

	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}

		contentType := mime.TypeByExtension(path.Ext(name))
		if mt := mediaType(name); mt != "" {
			data, err = m.Bytes(mt, data)
			if err != nil {
				return err
			}
			contentType = mt + "; charset=utf-8"
		}

		a.files["/"+name] = asset{data: data, contentType: contentType}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return a, nil
}

func (a *assets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Path
	if strings.HasSuffix(name, "/") {
		name += "index.html"
	}

	f, ok := a.files[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	if f.contentType != "" {
		w.Header().Set("Content-Type", f.contentType)
	}
	http.ServeContent(w, r, name, a.modTime, bytes.NewReader(f.data))
}
