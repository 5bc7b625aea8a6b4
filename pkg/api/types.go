// Package api defines the housesplit.v1 wire types and the Connect handlers and clients
// that carry them. Messages are plain Go structs encoded with a JSON codec.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member is a household member.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LoginRequest exchanges a member PIN for a session token.
type LoginRequest struct {
	MemberID string `json:"member_id"`
	PIN      string `json:"pin"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	Member Member `json:"member"`
}

// Expense is an expense as seen by clients. Shares are present for the amount and
// percent strategies only.
type Expense struct {
	ID             string                     `json:"id"`
	Amount         decimal.Decimal            `json:"amount"`
	PayerID        string                     `json:"payer_id"`
	ParticipantIDs []string                   `json:"participant_ids"`
	SplitStrategy  string                     `json:"split_strategy"`
	Shares         map[string]decimal.Decimal `json:"shares,omitempty"`
	Period         string                     `json:"period"`
	Category       string                     `json:"category,omitempty"`
	Description    string                     `json:"description,omitempty"`
	Note           string                     `json:"note,omitempty"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// ExpenseInput holds the editable fields of an expense. SplitStrategy defaults to
// "equal"; Shares are amounts or percentages keyed by member id.
type ExpenseInput struct {
	Amount         decimal.Decimal            `json:"amount"`
	ParticipantIDs []string                   `json:"participant_ids"`
	SplitStrategy  string                     `json:"split_strategy,omitempty"`
	Shares         map[string]decimal.Decimal `json:"shares,omitempty"`
	Period         string                     `json:"period"`
	Category       string                     `json:"category,omitempty"`
	Description    string                     `json:"description,omitempty"`
	Note           string                     `json:"note,omitempty"`
}

// CreateExpenseRequest records an expense paid by the caller.
type CreateExpenseRequest struct {
	ExpenseInput
}

type CreateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

// UpdateExpenseRequest replaces every editable field of an expense.
type UpdateExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
	ExpenseInput
}

type UpdateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

// ListExpensesRequest lists the expenses of one period, or all of them when Period
// is empty.
type ListExpensesRequest struct {
	Period string `json:"period,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

// Balance is a member's amount, rounded to cents.
type Balance struct {
	MemberID string          `json:"member_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// Transfer is a suggested payment with its settlement status.
type Transfer struct {
	FromID       string          `json:"from_id"`
	ToID         string          `json:"to_id"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	SettlementID string          `json:"settlement_id,omitempty"`
}

// Settlement is a recorded payment between two members.
type Settlement struct {
	ID          string          `json:"id"`
	DebtorID    string          `json:"debtor_id"`
	CreditorID  string          `json:"creditor_id"`
	Period      string          `json:"period"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	Proof       string          `json:"proof,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	ConfirmedAt *time.Time      `json:"confirmed_at,omitempty"`
}

// Report is the derived state of one period.
type Report struct {
	Period       string     `json:"period"`
	Balances     []Balance  `json:"balances"`
	Transfers    []Transfer `json:"transfers"`
	Net          []Balance  `json:"net"`
	TotalPaid    []Balance  `json:"total_paid"`
	ExpenseCount int        `json:"expense_count"`
	AllSettled   bool       `json:"all_settled"`

	// AwaitingConfirmation counts paid transfers to the caller not yet confirmed.
	AwaitingConfirmation int `json:"awaiting_confirmation"`
}

type GetReportRequest struct {
	Period string `json:"period"`
}

type GetReportResponse struct {
	Report Report `json:"report"`
}

// MarkPaidRequest reports that the caller paid CreditorID for Period.
type MarkPaidRequest struct {
	CreditorID string          `json:"creditor_id"`
	Period     string          `json:"period"`
	Amount     decimal.Decimal `json:"amount"`
	Proof      string          `json:"proof,omitempty"`
}

type MarkPaidResponse struct {
	Settlement Settlement `json:"settlement"`
}

// ConfirmRequest confirms receipt of a payment to the caller, either by settlement id
// or by debtor and period.
type ConfirmRequest struct {
	SettlementID string `json:"settlement_id,omitempty"`
	DebtorID     string `json:"debtor_id,omitempty"`
	Period       string `json:"period,omitempty"`
}

type ConfirmResponse struct {
	Settlement Settlement `json:"settlement"`
}

type GetSettlementStatusRequest struct {
	DebtorID   string `json:"debtor_id"`
	CreditorID string `json:"creditor_id"`
	Period     string `json:"period"`
}

type GetSettlementStatusResponse struct {
	Status     string      `json:"status"`
	Settlement *Settlement `json:"settlement,omitempty"`
}
