package middleware

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitflow/internal/metrics"
)

// LoggingInterceptor logs every RPC with its session and outcome and records
// its latency. Caller mistakes (bad input, wrong state, missing token) log at
// WARN; anything else that fails logs at ERROR.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			elapsed := time.Since(start)

			procedure := req.Spec().Procedure
			attrs := []slog.Attr{
				slog.String("procedure", procedure),
				slog.Int64("duration_ms", elapsed.Milliseconds()),
			}
			// Empty for StartSession.
			if id := GetSessionID(ctx); id != "" {
				attrs = append(attrs, slog.String("session_id", id))
			}

			if err == nil {
				metrics.ObserveRPC(procedure, "ok", elapsed)
				slog.LogAttrs(ctx, slog.LevelInfo, "RPC ok", attrs...)
				return resp, nil
			}

			code := connect.CodeOf(err)
			metrics.ObserveRPC(procedure, code.String(), elapsed)
			attrs = append(attrs, slog.String("code", code.String()), slog.Any("error", err))
			slog.LogAttrs(ctx, rpcErrorLevel(code), "RPC error", attrs...)
			return resp, err
		}
	}
}

func rpcErrorLevel(code connect.Code) slog.Level {
	switch code {
	case connect.CodeInvalidArgument, connect.CodeNotFound, connect.CodeFailedPrecondition,
		connect.CodeUnauthenticated, connect.CodeCanceled:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
