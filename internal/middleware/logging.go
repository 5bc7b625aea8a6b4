package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call to logger.
// Besides procedure, member and duration, messages that implement slog.LogValuer are
// logged under "request", which is how period and settlement ids reach the log.
func LoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			member := GetMemberID(ctx) // empty if pre-auth

			resp, err := next(ctx, req)

			attrs := []any{
				"procedure", req.Spec().Procedure,
				"member", member,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if v, ok := req.Any().(slog.LogValuer); ok {
				attrs = append(attrs, "request", v)
			}

			var connectErr *connect.Error
			switch {
			case err == nil:
				logger.InfoContext(ctx, "RPC ok", attrs...)
			case errors.As(err, &connectErr) && connectErr.Code() != connect.CodeInternal:
				attrs = append(attrs, "code", connectErr.Code(), "error", connectErr.Message())
				logger.WarnContext(ctx, "RPC error", attrs...)
			default:
				attrs = append(attrs, "error", err)
				logger.ErrorContext(ctx, "RPC error", attrs...)
			}

			return resp, err
		}
	}
}
