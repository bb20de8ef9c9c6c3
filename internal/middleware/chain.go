package middleware

import "net/http"

// Chain wraps h so that middlewares run in the order given: the first one
// sees the request first.
//
//	handler := Chain(mux,
//	    Config(cfg),
//	    SecurityHeaders,
//	    RequestLogging,
//	)
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
