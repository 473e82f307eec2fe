package metrics

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// GetRoutePath returns the chi route pattern so dynamic segments such as
// short codes do not become separate label values.
func GetRoutePath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	// Unrouted requests fall back to the raw path.
	return SanitizeLabel(NormalizePath(r.URL.Path))
}

var staticRoutes = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/metrics": true,
	"/shorten": true,
	"/redoc":   true,
}

// NormalizePath maps request paths onto the router's patterns.
func NormalizePath(path string) string {
	switch {
	case path == "" || path == "/":
		return "/"
	case staticRoutes[path]:
		return path
	case strings.HasPrefix(path, "/swagger"):
		return "/swagger/*"
	case strings.HasPrefix(path, "/r/"):
		return "/r/{shortCode}"
	}
	return path
}

func FormatStatusCode(statusCode int) string {
	return strconv.Itoa(statusCode)
}

// SanitizeLabel strips quoting and line breaks and caps the length of a
// label value.
func SanitizeLabel(value string) string {
	value = strings.NewReplacer(`"`, "", `\`, "", "\n", "", "\r", "").Replace(value)

	if len(value) > 100 {
		value = value[:100]
	}

	return value
}
