package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/housesplit/internal/models"
)

// PINLength is the number of digits in a member PIN.
const PINLength = 4

var (
	ErrInvalidCredentials = errors.New("invalid member or PIN")
	ErrInvalidPIN         = fmt.Errorf("PIN must be exactly %d digits", PINLength)
)

// Credential pairs a household member with the bcrypt hash of their PIN.
type Credential struct {
	Member  models.Member
	PINHash string
}

// PINAuthenticator implements PIN-based authentication over a fixed member list.
type PINAuthenticator struct {
	credentials map[models.MemberID]Credential
}

var _ Authenticator = (*PINAuthenticator)(nil)

// NewPINAuthenticator creates an authenticator for the given credentials.
// Members without a PIN hash cannot log in.
func NewPINAuthenticator(credentials []Credential) *PINAuthenticator {
	byID := make(map[models.MemberID]Credential, len(credentials))
	for _, c := range credentials {
		byID[c.Member.ID] = c
	}
	return &PINAuthenticator{credentials: byID}
}

// ValidateCredential checks that the PIN is PINLength decimal digits.
func (a *PINAuthenticator) ValidateCredential(credential string) error {
	return ValidatePIN(credential)
}

// Authenticate compares the PIN against the member's stored hash.
func (a *PINAuthenticator) Authenticate(_ context.Context, memberID models.MemberID, credential string) (*models.Member, error) {
	c, ok := a.credentials[memberID]
	if !ok || c.PINHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PINHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}
	member := c.Member
	return &member, nil
}

// ValidatePIN checks that pin is PINLength decimal digits.
func ValidatePIN(pin string) error {
	if len(pin) != PINLength {
		return ErrInvalidPIN
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}

// HashPIN validates pin and returns its bcrypt hash for the config file.
func HashPIN(pin string) (string, error) {
	if err := ValidatePIN(pin); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}
	return string(hash), nil
}
