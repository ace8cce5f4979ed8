// Package module mounts self-contained HTTP modules under single-segment
// path prefixes. Each module owns its middleware chain and sees request
// paths with its prefix removed.
package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/transflow/pkg/middleware"
)

type Module struct {
	prefix string
	inner  http.Handler
	chain  middleware.Chain
}

// New creates a module serving inner under prefix, e.g. "/api".
// It panics on an empty, relative or multi-segment prefix.
func New(prefix string, inner http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{prefix: prefix, inner: inner}
}

func (m *Module) Prefix() string { return m.prefix }

// Use appends mw to the module's chain. Middleware run in the order added.
func (m *Module) Use(mw middleware.Middleware) {
	m.chain.Use(mw)
}

// Serve removes the module prefix from the request path and dispatches
// through the middleware chain.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	rest := strings.TrimPrefix(req.URL.Path, m.prefix)
	if rest == "" {
		rest = "/"
	}

	inner := req.Clone(req.Context())
	inner.URL.Path = rest
	inner.URL.RawPath = ""

	m.chain.Then(m.inner).ServeHTTP(w, inner)
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix is empty")
	case prefix[0] != '/':
		return fmt.Errorf("module prefix %q must start with /", prefix)
	case strings.Contains(prefix[1:], "/"):
		return fmt.Errorf("module prefix %q must be a single path segment", prefix)
	}
	return nil
}
