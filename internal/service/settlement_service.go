package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/housesplit/internal/calculator"
	"github.com/mmynk/housesplit/internal/models"
	"github.com/mmynk/housesplit/internal/notify"
	"github.com/mmynk/housesplit/internal/settlement"
	"github.com/mmynk/housesplit/internal/storage"
	"github.com/mmynk/housesplit/pkg/api"
)

// LoadReport takes a fresh snapshot of period from store and derives its report.
// members gives the canonical member order.
func LoadReport(ctx context.Context, store storage.Store, members []models.MemberID, period models.Period) (calculator.Report, error) {
	expenses, err := store.ListExpenses(ctx, period)
	if err != nil {
		return calculator.Report{}, fmt.Errorf("failed to list expenses: %w", err)
	}
	settlements, err := store.ListSettlements(ctx, period)
	if err != nil {
		return calculator.Report{}, fmt.Errorf("failed to list settlements: %w", err)
	}

	snapshot := calculator.Snapshot{
		Members:     members,
		Expenses:    expenses,
		Settlements: settlements,
	}
	return calculator.BuildReport(snapshot, period), nil
}

// SettlementService implements the Connect SettlementService.
type SettlementService struct {
	store     storage.Store
	tracker   *settlement.Tracker
	members   []models.MemberID
	known     map[models.MemberID]bool
	publisher notify.Publisher
}

var _ api.SettlementServiceHandler = (*SettlementService)(nil)

// NewSettlementService creates a new SettlementService. The order of members is the
// canonical order used to plan transfers.
func NewSettlementService(store storage.Store, members []models.Member, publisher notify.Publisher) *SettlementService {
	ids := models.MemberIDs(members)
	known := make(map[models.MemberID]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return &SettlementService{
		store:     store,
		tracker:   settlement.NewTracker(store),
		members:   ids,
		known:     known,
		publisher: publisher,
	}
}

// GetReport returns balances, suggested transfers with their status and net balances
// for a period.
func (s *SettlementService) GetReport(ctx context.Context, req *connect.Request[api.GetReportRequest]) (*connect.Response[api.GetReportResponse], error) {
	viewer, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	period, err := parsePeriod(req.Msg.Period)
	if err != nil {
		return nil, toConnectError(err)
	}

	report, err := LoadReport(ctx, s.store, s.members, period)
	if err != nil {
		slog.Error("GetReport failed", "period", period, "error", err)
		return nil, toConnectError(err)
	}

	slog.Debug("Report built",
		"period", period,
		"expenses", report.ExpenseCount,
		"transfers", len(report.Transfers),
		"all_settled", report.AllSettled,
	)
	return connect.NewResponse(&api.GetReportResponse{Report: toAPIReport(report, s.members, viewer)}), nil
}

// MarkPaid records that the caller paid the creditor. When no amount is given for a
// pair without a record, the amount of the suggested transfer for the pair is used.
func (s *SettlementService) MarkPaid(ctx context.Context, req *connect.Request[api.MarkPaidRequest]) (*connect.Response[api.MarkPaidResponse], error) {
	debtor, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	period, err := parsePeriod(req.Msg.Period)
	if err != nil {
		return nil, toConnectError(err)
	}
	creditor := models.MemberID(req.Msg.CreditorID)
	if !s.known[creditor] {
		return nil, toConnectError(fmt.Errorf("creditor_id: %w: %q", models.ErrUnknownMember, creditor))
	}

	key := models.SettlementKey{Debtor: debtor, Creditor: creditor, Period: period}
	amount := req.Msg.Amount
	if amount.IsZero() {
		if amount, err = s.defaultAmount(ctx, key); err != nil {
			return nil, toConnectError(err)
		}
	}

	st, err := s.tracker.MarkPaid(ctx, settlement.MarkPaid{Key: key, Amount: amount, Proof: req.Msg.Proof})
	if err != nil {
		slog.Warn("MarkPaid failed", "member", debtor, "creditor", creditor, "period", period, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Settlement marked paid",
		"settlement_id", st.ID,
		"member", debtor,
		"creditor", creditor,
		"period", period,
		"amount", st.Amount,
	)
	s.publish(ctx, notify.Change{Kind: notify.KindSettlement, Op: notify.OpPaid, Period: period, ID: st.ID})

	return connect.NewResponse(&api.MarkPaidResponse{Settlement: toAPISettlement(*st)}), nil
}

// Confirm acknowledges receipt of a payment to the caller, by settlement id or by
// debtor and period.
func (s *SettlementService) Confirm(ctx context.Context, req *connect.Request[api.ConfirmRequest]) (*connect.Response[api.ConfirmResponse], error) {
	creditor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	var st *models.Settlement
	if req.Msg.SettlementID != "" {
		st, err = s.confirmByID(ctx, creditor, req.Msg.SettlementID)
	} else {
		st, err = s.confirmByPair(ctx, creditor, req.Msg.DebtorID, req.Msg.Period)
	}
	if err != nil {
		slog.Warn("Confirm failed", "member", creditor, "settlement_id", req.Msg.SettlementID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Settlement confirmed", "settlement_id", st.ID, "member", creditor, "period", st.Period)
	s.publish(ctx, notify.Change{Kind: notify.KindSettlement, Op: notify.OpConfirmed, Period: st.Period, ID: st.ID})

	return connect.NewResponse(&api.ConfirmResponse{Settlement: toAPISettlement(*st)}), nil
}

// GetSettlementStatus returns the status of a (debtor, creditor, period) pair.
func (s *SettlementService) GetSettlementStatus(ctx context.Context, req *connect.Request[api.GetSettlementStatusRequest]) (*connect.Response[api.GetSettlementStatusResponse], error) {
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	period, err := parsePeriod(req.Msg.Period)
	if err != nil {
		return nil, toConnectError(err)
	}

	key := models.SettlementKey{
		Debtor:   models.MemberID(req.Msg.DebtorID),
		Creditor: models.MemberID(req.Msg.CreditorID),
		Period:   period,
	}
	status, st, err := s.tracker.Status(ctx, key)
	if err != nil {
		slog.Error("GetSettlementStatus failed", "period", period, "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.GetSettlementStatusResponse{Status: string(status)}
	if st != nil {
		out := toAPISettlement(*st)
		resp.Settlement = &out
	}
	return connect.NewResponse(resp), nil
}

func (s *SettlementService) confirmByID(ctx context.Context, creditor models.MemberID, settlementID string) (*models.Settlement, error) {
	existing, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if existing.Creditor != creditor {
		return nil, fmt.Errorf("%w: settlement %s", ErrNotCreditor, settlementID)
	}
	return s.tracker.Confirm(ctx, settlementID)
}

func (s *SettlementService) confirmByPair(ctx context.Context, creditor models.MemberID, debtorID, rawPeriod string) (*models.Settlement, error) {
	period, err := parsePeriod(rawPeriod)
	if err != nil {
		return nil, err
	}
	key := models.SettlementKey{Debtor: models.MemberID(debtorID), Creditor: creditor, Period: period}
	return s.tracker.ConfirmPair(ctx, key)
}

// defaultAmount is the amount used when the caller gives none. A pair that already has
// a record keeps its amount, so zero is returned for it.
func (s *SettlementService) defaultAmount(ctx context.Context, key models.SettlementKey) (decimal.Decimal, error) {
	_, err := s.store.FindSettlement(ctx, key)
	switch {
	case err == nil:
		return decimal.Zero, nil
	case !errors.Is(err, storage.ErrNotFound):
		return decimal.Zero, err
	}
	return s.suggestedAmount(ctx, key)
}

// suggestedAmount looks up the planned transfer for key in the current report.
func (s *SettlementService) suggestedAmount(ctx context.Context, key models.SettlementKey) (decimal.Decimal, error) {
	report, err := LoadReport(ctx, s.store, s.members, key.Period)
	if err != nil {
		return decimal.Zero, err
	}
	for _, t := range report.Transfers {
		if t.From == key.Debtor && t.To == key.Creditor {
			return t.Amount, nil
		}
	}
	return decimal.Zero, fmt.Errorf("%w: %s -> %s in %s", ErrNoTransfer, key.Debtor, key.Creditor, key.Period)
}

func (s *SettlementService) publish(ctx context.Context, change notify.Change) {
	if err := s.publisher.Publish(ctx, change); err != nil {
		slog.Warn("Failed to publish change", "kind", change.Kind, "op", change.Op, "id", change.ID, "error", err)
	}
}
