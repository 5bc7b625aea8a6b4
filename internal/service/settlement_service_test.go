package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/housesplit/internal/models"
	"github.com/mmynk/housesplit/internal/notify"
	"github.com/mmynk/housesplit/pkg/api"
)

func report(t *testing.T, env *testEnv, viewer string) api.Report {
	t.Helper()
	resp, err := env.settlements.GetReport(context.Background(), as(env, models.MemberID(viewer), &api.GetReportRequest{Period: "2025-03"}))
	require.NoError(t, err)
	return resp.Msg.Report
}

func transferFrom(t *testing.T, r api.Report, from string) api.Transfer {
	t.Helper()
	for _, tr := range r.Transfers {
		if tr.FromID == from {
			return tr
		}
	}
	t.Fatalf("no transfer from %s", from)
	return api.Transfer{}
}

func balanceOf(t *testing.T, balances []api.Balance, member string) string {
	t.Helper()
	for _, b := range balances {
		if b.MemberID == member {
			return b.Amount.StringFixed(2)
		}
	}
	t.Fatalf("no balance for %s", member)
	return ""
}

// seedGroceries records 120.00 paid by lucas and shared by all four members, which
// leaves lucas +90 and everyone else -30.
func seedGroceries(t *testing.T, env *testEnv) {
	t.Helper()
	_, err := env.expenses.CreateExpense(context.Background(), as(env, "lucas", &api.CreateExpenseRequest{ExpenseInput: groceries()}))
	require.NoError(t, err)
}

func TestGetReport(t *testing.T) {
	env := newTestEnv(t)
	seedGroceries(t, env)

	r := report(t, env, "lucas")
	assert.Equal(t, "2025-03", r.Period)
	assert.Equal(t, 1, r.ExpenseCount)
	assert.False(t, r.AllSettled)

	require.Len(t, r.Balances, 4, "every member is listed")
	assert.Equal(t, "lucas", r.Balances[0].MemberID, "canonical order")
	assert.Equal(t, "90.00", balanceOf(t, r.Balances, "lucas"))
	assert.Equal(t, "-30.00", balanceOf(t, r.Balances, "niels"))
	assert.Equal(t, "120.00", balanceOf(t, r.TotalPaid, "lucas"))
	assert.Equal(t, "0.00", balanceOf(t, r.TotalPaid, "monica"))

	require.Len(t, r.Transfers, 3)
	for _, tr := range r.Transfers {
		assert.Equal(t, "lucas", tr.ToID)
		assert.Equal(t, "30.00", tr.Amount.StringFixed(2))
		assert.Equal(t, "pending", tr.Status)
		assert.Empty(t, tr.SettlementID)
	}
	assert.Equal(t, r.Balances, r.Net, "nothing confirmed yet")

	_, err := env.settlements.GetReport(context.Background(), as(env, "lucas", &api.GetReportRequest{Period: "2025-3"}))
	requireCode(t, connect.CodeInvalidArgument, err)
}

func TestSettlementLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedGroceries(t, env)

	// Amount defaults to the suggested transfer.
	paid, err := env.settlements.MarkPaid(ctx, as(env, "luis", &api.MarkPaidRequest{
		CreditorID: "lucas",
		Period:     "2025-03",
		Proof:      "receipt-001",
	}))
	require.NoError(t, err)
	st := paid.Msg.Settlement
	assert.Equal(t, "paid", st.Status)
	assert.Equal(t, "30.00", st.Amount.StringFixed(2))
	assert.NotNil(t, st.PaidAt)
	assert.Nil(t, st.ConfirmedAt)

	r := report(t, env, "lucas")
	assert.Equal(t, "paid", transferFrom(t, r, "luis").Status)
	assert.Equal(t, st.ID, transferFrom(t, r, "luis").SettlementID)
	assert.Equal(t, 1, r.AwaitingConfirmation)
	assert.Equal(t, "-30.00", balanceOf(t, r.Net, "luis"), "paid does not move net balances")
	assert.Equal(t, 0, report(t, env, "monica").AwaitingConfirmation)

	_, err = env.settlements.Confirm(ctx, as(env, "monica", &api.ConfirmRequest{SettlementID: st.ID}))
	requireCode(t, connect.CodePermissionDenied, err)

	confirmed, err := env.settlements.Confirm(ctx, as(env, "lucas", &api.ConfirmRequest{SettlementID: st.ID}))
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Msg.Settlement.Status)
	assert.NotNil(t, confirmed.Msg.Settlement.ConfirmedAt)

	r = report(t, env, "lucas")
	assert.Equal(t, "confirmed", transferFrom(t, r, "luis").Status)
	assert.Equal(t, "0.00", balanceOf(t, r.Net, "luis"))
	assert.Equal(t, "60.00", balanceOf(t, r.Net, "lucas"))
	assert.Equal(t, "90.00", balanceOf(t, r.Balances, "lucas"), "gross balances never change")

	_, err = env.settlements.Confirm(ctx, as(env, "lucas", &api.ConfirmRequest{SettlementID: st.ID}))
	requireCode(t, connect.CodeFailedPrecondition, err)

	// Marking a confirmed settlement paid again never moves it backwards.
	again, err := env.settlements.MarkPaid(ctx, as(env, "luis", &api.MarkPaidRequest{CreditorID: "lucas", Period: "2025-03"}))
	require.NoError(t, err)
	assert.Equal(t, "confirmed", again.Msg.Settlement.Status)
	assert.Equal(t, st.ID, again.Msg.Settlement.ID)

	status, err := env.settlements.GetSettlementStatus(ctx, as(env, "niels", &api.GetSettlementStatusRequest{
		DebtorID:   "luis",
		CreditorID: "lucas",
		Period:     "2025-03",
	}))
	require.NoError(t, err)
	assert.Equal(t, "confirmed", status.Msg.Status)
	require.NotNil(t, status.Msg.Settlement)
	assert.Equal(t, "receipt-001", status.Msg.Settlement.Proof)
}

func TestMarkPaid_ExistingRecordKeepsAmountWithoutTransfer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedGroceries(t, env)

	paid, err := env.settlements.MarkPaid(ctx, as(env, "luis", &api.MarkPaidRequest{CreditorID: "lucas", Period: "2025-03"}))
	require.NoError(t, err)

	list, err := env.expenses.ListExpenses(ctx, as(env, "lucas", &api.ListExpensesRequest{Period: "2025-03"}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Expenses, 1)
	_, err = env.expenses.DeleteExpense(ctx, as(env, "lucas", &api.DeleteExpenseRequest{ExpenseID: list.Msg.Expenses[0].ID}))
	require.NoError(t, err)
	require.Empty(t, report(t, env, "luis").Transfers)

	again, err := env.settlements.MarkPaid(ctx, as(env, "luis", &api.MarkPaidRequest{
		CreditorID: "lucas",
		Period:     "2025-03",
		Proof:      "receipt-002",
	}))
	require.NoError(t, err)
	assert.Equal(t, paid.Msg.Settlement.ID, again.Msg.Settlement.ID)
	assert.Equal(t, "30.00", again.Msg.Settlement.Amount.StringFixed(2))
	assert.Equal(t, "receipt-002", again.Msg.Settlement.Proof)
}

func TestSettlement_AllSettled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedGroceries(t, env)

	for _, debtor := range []string{"luis", "monica", "niels"} {
		_, err := env.settlements.MarkPaid(ctx, as(env, models.MemberID(debtor), &api.MarkPaidRequest{
			CreditorID: "lucas",
			Period:     "2025-03",
			Amount:     dec("30"),
		}))
		require.NoError(t, err)

		assert.False(t, report(t, env, "lucas").AllSettled)

		_, err = env.settlements.Confirm(ctx, as(env, "lucas", &api.ConfirmRequest{DebtorID: debtor, Period: "2025-03"}))
		require.NoError(t, err)
	}

	r := report(t, env, "lucas")
	assert.True(t, r.AllSettled)
	for _, b := range r.Net {
		assert.Equal(t, "0.00", b.Amount.StringFixed(2), b.MemberID)
	}

	var confirmations int
	for _, c := range env.changes.all() {
		if c.Kind == notify.KindSettlement && c.Op == notify.OpConfirmed {
			confirmations++
		}
	}
	assert.Equal(t, 3, confirmations)
}

func TestSettlement_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedGroceries(t, env)

	tests := []struct {
		name string
		call func() error
		code connect.Code
	}{
		{
			"pay yourself",
			func() error {
				_, err := env.settlements.MarkPaid(ctx, as(env, "lucas", &api.MarkPaidRequest{CreditorID: "lucas", Period: "2025-03", Amount: dec("5")}))
				return err
			},
			connect.CodeInvalidArgument,
		},
		{
			"unknown creditor",
			func() error {
				_, err := env.settlements.MarkPaid(ctx, as(env, "luis", &api.MarkPaidRequest{CreditorID: "stranger", Period: "2025-03", Amount: dec("5")}))
				return err
			},
			connect.CodeInvalidArgument,
		},
		{
			"no suggested transfer",
			func() error {
				_, err := env.settlements.MarkPaid(ctx, as(env, "luis", &api.MarkPaidRequest{CreditorID: "monica", Period: "2025-03"}))
				return err
			},
			connect.CodeInvalidArgument,
		},
		{
			"confirm unknown id",
			func() error {
				_, err := env.settlements.Confirm(ctx, as(env, "lucas", &api.ConfirmRequest{SettlementID: "missing"}))
				return err
			},
			connect.CodeNotFound,
		},
		{
			"confirm pending pair",
			func() error {
				_, err := env.settlements.Confirm(ctx, as(env, "lucas", &api.ConfirmRequest{DebtorID: "niels", Period: "2025-03"}))
				return err
			},
			connect.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireCode(t, tt.code, tt.call())
		})
	}

	status, err := env.settlements.GetSettlementStatus(ctx, as(env, "lucas", &api.GetSettlementStatusRequest{
		DebtorID:   "niels",
		CreditorID: "lucas",
		Period:     "2025-03",
	}))
	require.NoError(t, err)
	assert.Equal(t, "pending", status.Msg.Status)
	assert.Nil(t, status.Msg.Settlement)
}
