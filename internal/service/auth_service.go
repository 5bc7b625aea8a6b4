package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/housesplit/internal/auth"
	"github.com/mmynk/housesplit/internal/models"
	"github.com/mmynk/housesplit/pkg/api"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

var _ api.AuthServiceHandler = (*AuthService)(nil)

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Login authenticates a member by PIN and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	memberID := models.MemberID(req.Msg.MemberID)
	s.logger.Info("Login request", "member", memberID)

	if memberID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}
	if err := s.authenticator.ValidateCredential(req.Msg.PIN); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	member, err := s.authenticator.Authenticate(ctx, memberID, req.Msg.PIN)
	if err != nil {
		s.logger.Warn("Login failed", "member", memberID, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	token, err := s.jwtManager.Generate(member)
	if err != nil {
		s.logger.Error("Failed to generate token", "member", member.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Member logged in", "member", member.ID)
	return connect.NewResponse(&api.LoginResponse{
		Token:  token,
		Member: api.Member{ID: string(member.ID), Name: member.Name},
	}), nil
}
