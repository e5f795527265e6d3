package api

import (
	"net"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// rateLimited wraps an operation so each client address gets its own token
// bucket. Exceeding it returns 429.
func (s *Server) rateLimited() huma.Middlewares {
	if s.limiter == nil {
		return nil
	}
	return huma.Middlewares{func(ctx huma.Context, next func(huma.Context)) {
		key := clientKey(ctx.RemoteAddr())
		if !s.limiter.Allow(key) {
			s.logger.Warn("rate limit exceeded",
				"client", key,
				"path", ctx.URL().Path,
			)
			_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "too many requests, try again later")
			return
		}
		next(ctx)
	}}
}

// clientKey strips the port from a remote address. RealIP middleware has
// already resolved forwarded headers.
func clientKey(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
