// Package view renders the HTML pages. Each page is parsed together with the
// shared layout and partials, then cached.
package view

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/go-records/httpx"
	"github.com/go-chi/chi/v5/middleware"
)

// Renderer executes page templates from an fs.FS holding layout.html,
// partials/*.html and the pages.
type Renderer struct {
	templates fs.FS
	static    fs.FS
	// dev disables the cache so template edits show up on reload.
	dev bool

	mu    sync.RWMutex
	cache map[string]*template.Template

	assetsMu sync.Mutex
	assets   map[string]string
}

// New returns a renderer over templates. static is used to fingerprint asset
// URLs and may be nil.
func New(templates, static fs.FS, dev bool) *Renderer {
	return &Renderer{
		templates: templates,
		static:    static,
		dev:       dev,
		cache:     map[string]*template.Template{},
		assets:    map[string]string{},
	}
}

// Funcs returns the helpers available to every template.
func (v *Renderer) Funcs() template.FuncMap {
	return template.FuncMap{
		"year":  func() int { return time.Now().Year() },
		"asset": v.asset,
		// dict creates a map from key-value pairs for passing to sub-templates.
		// Usage: {{ template "field" (dict "Name" "city" "Value" .Form.City) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
		"deref": func(p *uint) uint {
			if p == nil {
				return 0
			}
			return *p
		},
		"hasID": func(ids []uint, id uint) bool { return slices.Contains(ids, id) },
	}
}

// Render executes page name with data and writes it with status. Common
// keys are filled in: Year, Toast (consumed from its cookie) and RequestID.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) error {
	t, err := v.lookup(name)
	if err != nil {
		return err
	}

	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	if _, exists := data["Toast"]; !exists {
		data["Toast"] = httpx.PopToast(w, r)
	}
	if _, exists := data["RequestID"]; !exists {
		data["RequestID"] = middleware.GetReqID(r.Context())
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("executing %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

func (v *Renderer) lookup(name string) (*template.Template, error) {
	if !v.dev {
		v.mu.RLock()
		t, ok := v.cache[name]
		v.mu.RUnlock()
		if ok {
			return t, nil
		}
	}

	t, err := template.New("layout.html").Funcs(v.Funcs()).
		ParseFS(v.templates, "layout.html", "partials/*.html", name)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	if !v.dev {
		v.mu.Lock()
		v.cache[name] = t
		v.mu.Unlock()
	}
	return t, nil
}

// asset returns /static/<rel>?v=<hash> for cache busting.
func (v *Renderer) asset(rel string) string {
	if strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") || strings.HasPrefix(rel, "//") {
		return rel
	}
	v.assetsMu.Lock()
	defer v.assetsMu.Unlock()
	if u, ok := v.assets[rel]; ok && !v.dev {
		return u
	}
	u := "/static/" + rel
	if v.static != nil {
		if b, err := fs.ReadFile(v.static, rel); err == nil {
			h := sha1.Sum(b)
			u += fmt.Sprintf("?v=%x", h[:8])
		}
	}
	v.assets[rel] = u
	return u
}
