package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mmynk/housesplit/internal/auth"
	"github.com/mmynk/housesplit/internal/middleware"
	"github.com/mmynk/housesplit/internal/models"
	"github.com/mmynk/housesplit/internal/settlement"
	"github.com/mmynk/housesplit/internal/storage"
)

var (
	ErrNotPayer    = errors.New("only the payer can change this expense")
	ErrNotCreditor = errors.New("only the creditor can confirm this settlement")
	ErrNoTransfer  = errors.New("no suggested transfer for this pair")
)

// toConnectError maps domain errors onto Connect status codes.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, models.ErrInvalidPeriod),
		errors.Is(err, models.ErrUnknownMember),
		errors.Is(err, settlement.ErrSelfSettlement),
		errors.Is(err, settlement.ErrNonPositiveAmount),
		errors.Is(err, ErrNoTransfer):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, settlement.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, settlement.ErrInvalidTransition):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, ErrNotPayer), errors.Is(err, ErrNotCreditor):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// caller returns the authenticated member, or an Unauthenticated error.
func caller(ctx context.Context) (models.MemberID, error) {
	id := middleware.GetMemberID(ctx)
	if id == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return id, nil
}

func parsePeriod(s string) (models.Period, error) {
	p, err := models.ParsePeriod(s)
	if err != nil {
		return "", fmt.Errorf("period: %w", err)
	}
	return p, nil
}
