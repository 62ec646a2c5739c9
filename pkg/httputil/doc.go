// Package httputil provides the JSON response helpers, query parsing and
// middleware shared by the documentation server.
//
//	httputil.WriteJSON(w, http.StatusOK, results)
//	httputil.WriteNotFoundError(w, "page not found")
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.RecoveryMiddleware(logger),
//		httputil.LoggingMiddleware(logger),
//	)(router)
package httputil
