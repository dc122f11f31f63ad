package middleware

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitperfect/internal/metrics"
	"github.com/mmynk/splitperfect/internal/ratelimit"
)

var ErrRateLimited = errors.New("too many requests, slow down")

// RateLimit returns an interceptor that applies limiter to the listed
// procedures, keyed by client IP. All procedures are limited when none are
// listed. A nil limiter disables limiting.
func RateLimit(limiter *ratelimit.MapLimiter, m *metrics.Metrics, procedures ...string) connect.UnaryInterceptorFunc {
	limited := make(map[string]struct{}, len(procedures))
	for _, p := range procedures {
		limited[p] = struct{}{}
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			procedure := req.Spec().Procedure
			if _, ok := limited[procedure]; ok || len(limited) == 0 {
				if !limiter.Allow(rateLimitKey(req), time.Now()) {
					m.ObserveRateLimited(procedure)
					return nil, connect.NewError(connect.CodeResourceExhausted, ErrRateLimited)
				}
			}
			return next(ctx, req)
		}
	}
}

func rateLimitKey(req connect.AnyRequest) string {
	remote := strings.TrimSpace(req.Peer().Addr)
	if remote == "" {
		return "ip:unknown"
	}
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return "ip:" + remote
	}
	return "ip:" + host
}
