package module

import (
	"net/http"
	"strings"
)

// Router sends each request to the module owning its first path segment.
// Paths no module owns fall through to a plain ServeMux for service
// endpoints such as health probes and metrics.
type Router struct {
	modules  map[string]*Module
	fallback *http.ServeMux
}

func NewRouter() *Router {
	return &Router{
		modules:  map[string]*Module{},
		fallback: http.NewServeMux(),
	}
}

// Mount routes every path under m's prefix to m.
func (r *Router) Mount(m *Module) {
	r.modules[m.Prefix()] = m
}

// HandleNative registers handler on the fallback mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.fallback.HandleFunc(pattern, handler)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		req.URL.Path = strings.TrimSuffix(p, "/")
	}

	if m, ok := r.modules[firstSegment(req.URL.Path)]; ok {
		m.Serve(w, req)
		return
	}
	r.fallback.ServeHTTP(w, req)
}

// firstSegment returns "/api" for "/api/documents/1".
func firstSegment(path string) string {
	rest := strings.TrimPrefix(path, "/")
	seg, _, _ := strings.Cut(rest, "/")
	return "/" + seg
}
