package gateway

import (
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/sbilibin2017/gw-user-service/internal/logger"
)

// upstreamTimeout bounds both connecting to a backend and waiting for
// its response headers. A slower backend is treated as unavailable.
const upstreamTimeout = 30 * time.Second

// newProxy builds a reverse proxy for a single route. The Host header
// is replaced with the target's, the path is rewritten per the route,
// and any upstream failure is translated to a 503 with the service name.
func newProxy(route Route) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(route.Target)

	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		originalPath := req.URL.Path
		req.URL.Path = route.RewritePath(originalPath)
		director(req)
		req.Host = route.Target.Host

		logger.Log.Debugw("proxying request",
			"method", req.Method,
			"path", originalPath,
			"target", route.Target.String(),
			"service", route.Service,
		)
	}

	proxy.Transport = &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: upstreamTimeout,
		}).DialContext,
		ResponseHeaderTimeout: upstreamTimeout,
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Log.Errorw("proxy error",
			"service", route.Service,
			"path", r.URL.Path,
			"error", err,
		)
		writeGatewayError(w, http.StatusServiceUnavailable, "Service Unavailable",
			fmt.Sprintf("%s is temporarily unavailable", route.Service))
	}

	return proxy
}
