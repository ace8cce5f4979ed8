// Package middleware holds the HTTP middleware shared by Transflow modules.
package middleware

import "net/http"

// Middleware wraps a handler with cross-cutting behavior.
type Middleware func(http.Handler) http.Handler

// Chain is an ordered middleware stack. The first entry sees the request first.
type Chain []Middleware

// Use appends mw to the end of the chain.
func (c *Chain) Use(mw ...Middleware) {
	*c = append(*c, mw...)
}

// Then wraps h with every middleware in the chain.
func (c Chain) Then(h http.Handler) http.Handler {
	for i := len(c) - 1; i >= 0; i-- {
		h = c[i](h)
	}
	return h
}
