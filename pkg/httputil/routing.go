package httputil

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

var routableMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// AllowedMethods lists the methods, other than r's own, under which router
// has a route for r's path.
//
// mux forgets a method mismatch when a later subrouter route shares the
// matched path prefix, so the answer is computed by matching each method.
func AllowedMethods(router *mux.Router, r *http.Request) []string {
	var allowed []string
	for _, method := range routableMethods {
		if method == r.Method {
			continue
		}
		alt := r.Clone(r.Context())
		alt.Method = method

		var match mux.RouteMatch
		if router.Match(alt, &match) && match.MatchErr == nil {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

// WriteMethodNotAllowed writes a JSON 405 and sets the Allow header
func WriteMethodNotAllowed(w http.ResponseWriter, r *http.Request, allowed []string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	WriteErrorMessage(w, http.StatusMethodNotAllowed, fmt.Sprintf("method not allowed: %s %s", r.Method, r.URL.Path))
}

// UnroutedHandler answers requests router could not dispatch: a JSON 405
// when the path is routed under another method, otherwise notFound.
func UnroutedHandler(router *mux.Router, notFound http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if allowed := AllowedMethods(router, r); len(allowed) > 0 {
			WriteMethodNotAllowed(w, r, allowed)
			return
		}
		notFound(w, r)
	})
}
