package api

import "log/slog"

// Requests implement slog.LogValuer so RPC logs carry the records they touch.
// Credentials and free text are never included.

func (r LoginRequest) LogValue() slog.Value {
	return slog.GroupValue(slog.String("member_id", r.MemberID))
}

func (in ExpenseInput) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("period", in.Period),
		slog.String("amount", in.Amount.String()),
		slog.String("split_strategy", in.SplitStrategy),
		slog.Int("participants", len(in.ParticipantIDs)),
	)
}

func (r UpdateExpenseRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("expense_id", r.ExpenseID),
		slog.String("period", r.Period),
	)
}

func (r DeleteExpenseRequest) LogValue() slog.Value {
	return slog.GroupValue(slog.String("expense_id", r.ExpenseID))
}

func (r ListExpensesRequest) LogValue() slog.Value {
	return slog.GroupValue(slog.String("period", r.Period))
}

func (r GetReportRequest) LogValue() slog.Value {
	return slog.GroupValue(slog.String("period", r.Period))
}

func (r MarkPaidRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("creditor_id", r.CreditorID),
		slog.String("period", r.Period),
		slog.String("amount", r.Amount.String()),
	)
}

func (r ConfirmRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("settlement_id", r.SettlementID),
		slog.String("debtor_id", r.DebtorID),
		slog.String("period", r.Period),
	)
}

func (r GetSettlementStatusRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("debtor_id", r.DebtorID),
		slog.String("creditor_id", r.CreditorID),
		slog.String("period", r.Period),
	)
}
