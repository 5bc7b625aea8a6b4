package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/housesplit/pkg/api"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{MemberID: "monica", PIN: testPIN}))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Msg.Token)
	assert.Equal(t, api.Member{ID: "monica", Name: "Monica"}, resp.Msg.Member)

	_, err = env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{MemberID: "monica", PIN: "9999"}))
	requireCode(t, connect.CodeUnauthenticated, err)

	_, err = env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{MemberID: "stranger", PIN: testPIN}))
	requireCode(t, connect.CodeUnauthenticated, err)

	_, err = env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{MemberID: "monica", PIN: "12"}))
	requireCode(t, connect.CodeInvalidArgument, err)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.expenses.ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{}))
	requireCode(t, connect.CodeUnauthenticated, err)

	req := connect.NewRequest(&api.GetReportRequest{Period: "2025-03"})
	req.Header().Set("Authorization", "Bearer not-a-token")
	_, err = env.settlements.GetReport(ctx, req)
	requireCode(t, connect.CodeUnauthenticated, err)
}
