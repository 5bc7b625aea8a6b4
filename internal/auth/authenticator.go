package auth

import (
	"context"

	"github.com/mmynk/housesplit/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping the login method without changing the service layer.
type Authenticator interface {
	// Authenticate verifies the member's credential and returns the member if successful.
	Authenticate(ctx context.Context, memberID models.MemberID, credential string) (*models.Member, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
