package middleware

import (
	"context"
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/cashflow/internal/metrics"
)

type ping struct{}

func TestLoggingInterceptor(t *testing.T) {
	m := metrics.New(nil)
	interceptor := LoggingInterceptor(m)

	tests := []struct {
		name string
		err  error
	}{
		{"ok", nil},
		{"rejected", connect.NewError(connect.CodeInvalidArgument, errors.New("bad roster"))},
		{"unclassified", errors.New("disk on fire")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return connect.NewResponse(&ping{}), nil
			}

			resp, err := interceptor(next)(context.Background(), connect.NewRequest(&ping{}))
			if !errors.Is(err, tt.err) {
				t.Fatalf("error = %v, want %v", err, tt.err)
			}
			if tt.err == nil && resp == nil {
				t.Fatal("expected response to pass through")
			}
		})
	}

	// ok, invalid_argument and unknown each get their own series.
	if got := testutil.CollectAndCount(m.RPCDuration); got != 3 {
		t.Errorf("RPC series = %d, want 3", got)
	}
}

func TestLoggingInterceptor_NilMetrics(t *testing.T) {
	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&ping{}), nil
	}
	if _, err := LoggingInterceptor(nil)(next)(context.Background(), connect.NewRequest(&ping{})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
