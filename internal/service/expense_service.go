package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/housesplit/internal/models"
	"github.com/mmynk/housesplit/internal/notify"
	"github.com/mmynk/housesplit/internal/storage"
	"github.com/mmynk/housesplit/pkg/api"
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store     storage.Store
	members   map[models.MemberID]bool
	publisher notify.Publisher
}

var _ api.ExpenseServiceHandler = (*ExpenseService)(nil)

// NewExpenseService creates a new ExpenseService for the given household.
func NewExpenseService(store storage.Store, members []models.Member, publisher notify.Publisher) *ExpenseService {
	known := make(map[models.MemberID]bool, len(members))
	for _, m := range members {
		known[m.ID] = true
	}
	return &ExpenseService{store: store, members: known, publisher: publisher}
}

// admit validates e against the expense invariants and the household roster.
func (s *ExpenseService) admit(e models.Expense) (models.Expense, error) {
	e, err := models.NewExpense(e)
	if err != nil {
		return models.Expense{}, err
	}
	if err := e.CheckMembers(s.members); err != nil {
		return models.Expense{}, err
	}
	return e, nil
}

// CreateExpense records an expense paid by the caller.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	payer, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	e, err := expenseFromInput(payer, req.Msg.ExpenseInput)
	if err != nil {
		return nil, toConnectError(err)
	}
	e, err = s.admit(e)
	if err != nil {
		slog.Warn("CreateExpense rejected", "member", payer, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.CreateExpense(ctx, &e); err != nil {
		slog.Error("CreateExpense failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense created",
		"expense_id", e.ID,
		"member", payer,
		"period", e.Period,
		"amount", e.Amount,
		"split", e.Split.Kind(),
	)
	s.publish(ctx, notify.Change{Kind: notify.KindExpense, Op: notify.OpCreated, Period: e.Period, ID: e.ID})

	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(e)}), nil
}

// UpdateExpense replaces an expense. Only its payer may change it.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	member, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.ownedExpense(ctx, member, req.Msg.ExpenseID)
	if err != nil {
		return nil, err
	}

	e, err := expenseFromInput(existing.Payer, req.Msg.ExpenseInput)
	if err != nil {
		return nil, toConnectError(err)
	}
	e, err = s.admit(e)
	if err != nil {
		slog.Warn("UpdateExpense rejected", "expense_id", existing.ID, "error", err)
		return nil, toConnectError(err)
	}
	e.ID = existing.ID
	e.CreatedAt = existing.CreatedAt

	if err := s.store.UpdateExpense(ctx, &e); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", e.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense updated", "expense_id", e.ID, "member", member, "period", e.Period)
	s.publish(ctx, notify.Change{Kind: notify.KindExpense, Op: notify.OpUpdated, Period: e.Period, ID: e.ID})
	if existing.Period != e.Period {
		s.publish(ctx, notify.Change{Kind: notify.KindExpense, Op: notify.OpUpdated, Period: existing.Period, ID: e.ID})
	}

	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(e)}), nil
}

// DeleteExpense removes an expense. Only its payer may delete it.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	member, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.ownedExpense(ctx, member, req.Msg.ExpenseID)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteExpense(ctx, existing.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", existing.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense deleted", "expense_id", existing.ID, "member", member, "period", existing.Period)
	s.publish(ctx, notify.Change{Kind: notify.KindExpense, Op: notify.OpDeleted, Period: existing.Period, ID: existing.ID})

	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListExpenses returns the expenses of a period, or every expense when no period is given.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}

	var periods []models.Period
	if req.Msg.Period != "" {
		p, err := parsePeriod(req.Msg.Period)
		if err != nil {
			return nil, toConnectError(err)
		}
		periods = append(periods, p)
	}

	expenses, err := s.store.ListExpenses(ctx, periods...)
	if err != nil {
		slog.Error("ListExpenses failed", "period", req.Msg.Period, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

func (s *ExpenseService) ownedExpense(ctx context.Context, member models.MemberID, expenseID string) (*models.Expense, error) {
	existing, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		slog.Warn("Expense lookup failed", "expense_id", expenseID, "error", err)
		return nil, toConnectError(err)
	}
	if existing.Payer != member {
		return nil, toConnectError(fmt.Errorf("%w: expense %s", ErrNotPayer, expenseID))
	}
	return existing, nil
}

func (s *ExpenseService) publish(ctx context.Context, change notify.Change) {
	if err := s.publisher.Publish(ctx, change); err != nil {
		slog.Warn("Failed to publish change", "kind", change.Kind, "op", change.Op, "id", change.ID, "error", err)
	}
}
