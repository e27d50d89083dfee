package middleware

import "net/http"

// Middleware is a function that wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Stack is an ordered middleware list; the first entry runs outermost.
type Stack []Middleware

// Use appends mw unless it is nil, so optional layers can be added
// unconditionally.
func (s Stack) Use(mw Middleware) Stack {
	if mw == nil {
		return s
	}
	return append(s, mw)
}

// Then wraps h with every middleware in the stack.
func (s Stack) Then(h http.Handler) http.Handler {
	for i := len(s) - 1; i >= 0; i-- {
		h = s[i](h)
	}
	return h
}

// Chain combines middleware into one. Nil entries are skipped.
func Chain(mws ...Middleware) Middleware {
	var s Stack
	for _, mw := range mws {
		s = s.Use(mw)
	}
	return s.Then
}
