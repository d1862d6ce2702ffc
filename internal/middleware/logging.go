package middleware

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"nutrition-scheduler/internal/logger"
)

// RequestObserver receives one call per finished unary request.
type RequestObserver interface {
	ObserveRequest(method, code string, d time.Duration)
}

// Logging puts a request logger into the context and records the outcome
// of every call. obs may be nil.
func Logging(log logger.Logger, obs RequestObserver) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		l := log.With("method", info.FullMethod)
		ctx = logger.ContextWithLogger(ctx, l)

		resp, err := next(ctx, req)

		code := status.Code(err)
		d := time.Since(start)
		if obs != nil {
			obs.ObserveRequest(info.FullMethod, code.String(), d)
		}
		if err != nil {
			l.Info("rpc failed", "code", code, "dur", d, "err", status.Convert(err).Message())
		} else {
			l.Debug("rpc", "code", code, "dur", d)
		}
		return resp, err
	}
}
