package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/housesplit/internal/auth"
	"github.com/mmynk/housesplit/internal/models"
	"github.com/mmynk/housesplit/pkg/api"
)

type ping struct{}

// capture is a terminal handler that records the member it was called with.
func capture(got *models.MemberID) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		*got = GetMemberID(ctx)
		return connect.NewResponse(&ping{}), nil
	}
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.Generate(&models.Member{ID: "monica", Name: "Monica"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantMember models.MemberID
		wantErr    error
	}{
		{"valid token", "Bearer " + token, "monica", nil},
		{"missing header", "", "", auth.ErrMissingToken},
		{"wrong scheme", "Basic " + token, "", auth.ErrInvalidToken},
		{"bad token", "Bearer nope", "", auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got models.MemberID
			handler := RequireAuth(jwtManager)(capture(&got))

			req := connect.NewRequest(&ping{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			_, err := handler(context.Background(), req)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMember, got)
		})
	}
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	want := connect.NewError(connect.CodeNotFound, errors.New("missing"))
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	handler := LoggingInterceptor(logger)(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, want
	})

	_, err := handler(WithMemberID(context.Background(), "lucas"), connect.NewRequest(&ping{}))
	assert.Equal(t, want, err)
}

func TestLoggingInterceptor_LogsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := LoggingInterceptor(logger)(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("already confirmed"))
	})

	req := connect.NewRequest(&api.ConfirmRequest{SettlementID: "st-1", Period: "2025-03"})
	_, err := handler(WithMemberID(context.Background(), "lucas"), req)
	require.Error(t, err)

	var entry struct {
		Level   string `json:"level"`
		Member  string `json:"member"`
		Code    string `json:"code"`
		Request struct {
			SettlementID string `json:"settlement_id"`
			Period       string `json:"period"`
		} `json:"request"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry.Level)
	assert.Equal(t, "lucas", entry.Member)
	assert.Equal(t, "failed_precondition", entry.Code)
	assert.Equal(t, "st-1", entry.Request.SettlementID)
	assert.Equal(t, "2025-03", entry.Request.Period)
}

func TestLoggingInterceptor_OmitsPIN(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := LoggingInterceptor(logger)(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&ping{}), nil
	})

	_, err := handler(context.Background(), connect.NewRequest(&api.LoginRequest{MemberID: "monica", PIN: "4821"}))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"member_id":"monica"`)
	assert.NotContains(t, buf.String(), `"pin"`)
}

func TestMetricsInterceptor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	ok := m.Interceptor()(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&ping{}), nil
	})
	failing := m.Interceptor()(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("bad"))
	})

	ctx := context.Background()
	_, _ = ok(ctx, connect.NewRequest(&ping{}))
	_, _ = ok(ctx, connect.NewRequest(&ping{}))
	_, _ = failing(ctx, connect.NewRequest(&ping{}))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("", "invalid_argument")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}
