// Package httputil provides HTTP utilities for standardized response handling.
//
// # Response Helpers
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteNotFoundError(w, "plugin not found: meow")
//	httputil.WriteServiceUnavailable(w, "plugins not mounted")
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.RecoveryMiddleware(logger),
//		httputil.LoggingMiddleware(logger),
//	)
package httputil
