package gateway

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// RouteConfig is the raw, environment-supplied description of a proxy
// route.
type RouteConfig struct {
	Prefix  string // URL path prefix, e.g. /api/auth
	Target  string // Backend origin, e.g. http://localhost:3001
	Service string // Human-readable service name used in error messages
	Rewrite string // Replacement prefix; empty means identity rewrite
}

// Route is a validated proxy route.
type Route struct {
	Prefix  string
	Target  *url.URL
	Service string
	Rewrite string
}

// RewritePath applies the route's prefix rewrite to a request path.
func (rt Route) RewritePath(path string) string {
	return rt.Rewrite + strings.TrimPrefix(path, rt.Prefix)
}

// RouteTable holds proxy routes sorted by descending prefix length, so
// that matching always picks the most specific route.
type RouteTable struct {
	routes []Route
}

// NewRouteTable validates the configs and builds a table. Prefixes must
// be non-empty, start with a slash, and be unique.
func NewRouteTable(configs []RouteConfig) (*RouteTable, error) {
	seen := make(map[string]bool, len(configs))
	routes := make([]Route, 0, len(configs))

	for _, cfg := range configs {
		if cfg.Prefix == "" || !strings.HasPrefix(cfg.Prefix, "/") {
			return nil, fmt.Errorf("invalid route prefix %q", cfg.Prefix)
		}
		if seen[cfg.Prefix] {
			return nil, fmt.Errorf("duplicate route prefix %q", cfg.Prefix)
		}
		seen[cfg.Prefix] = true

		target, err := url.Parse(cfg.Target)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("invalid target %q for route %q", cfg.Target, cfg.Prefix)
		}

		rewrite := cfg.Rewrite
		if rewrite == "" {
			rewrite = cfg.Prefix
		}

		routes = append(routes, Route{
			Prefix:  strings.TrimSuffix(cfg.Prefix, "/"),
			Target:  target,
			Service: cfg.Service,
			Rewrite: rewrite,
		})
	}

	sort.Slice(routes, func(i, j int) bool {
		return len(routes[i].Prefix) > len(routes[j].Prefix)
	})

	return &RouteTable{routes: routes}, nil
}

// Match returns the most specific route whose prefix matches the path,
// or nil when no route matches. A prefix matches only on a path-segment
// boundary.
func (t *RouteTable) Match(path string) *Route {
	for i := range t.routes {
		rt := &t.routes[i]
		if path == rt.Prefix || strings.HasPrefix(path, rt.Prefix+"/") {
			return rt
		}
	}
	return nil
}

// AvailableRoutes lists the configured prefixes for 404 responses.
func (t *RouteTable) AvailableRoutes() []string {
	routes := make([]string, 0, len(t.routes)+1)
	routes = append(routes, "/health")
	for i := len(t.routes) - 1; i >= 0; i-- {
		routes = append(routes, t.routes[i].Prefix+"/*")
	}
	return routes
}
