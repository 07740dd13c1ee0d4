package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/cashflow/internal/metrics"
)

// LoggingInterceptor logs each unary call with its caller and latency and
// records the call in m. A nil m only logs.
//
// Client-side faults (bad arguments, missing credentials) are logged at Warn;
// anything the server could not classify is logged at Error.
func LoggingInterceptor(m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			began := time.Now()
			resp, err := next(ctx, req)
			elapsed := time.Since(began)

			procedure := req.Spec().Procedure
			code := rpcCode(err)
			m.ObserveRPC(procedure, code, elapsed)

			attrs := []any{
				"procedure", procedure,
				"account_id", GetAccountID(ctx),
				"duration_ms", elapsed.Milliseconds(),
			}
			switch {
			case err == nil:
				slog.Info("RPC ok", attrs...)
			case code == connect.CodeInternal.String() || code == connect.CodeUnknown.String():
				slog.Error("RPC failed", append(attrs, "code", code, "error", err)...)
			default:
				slog.Warn("RPC rejected", append(attrs, "code", code, "error", errMessage(err))...)
			}
			return resp, err
		}
	}
}

func rpcCode(err error) string {
	if err == nil {
		return "ok"
	}
	return connect.CodeOf(err).String()
}

func errMessage(err error) string {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Message()
	}
	return err.Error()
}
