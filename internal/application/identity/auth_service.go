package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/physiomanager/backend/internal/domain/identity"
	"github.com/physiomanager/backend/internal/domain/shared"
	"github.com/physiomanager/backend/internal/infrastructure/auth"
)

// AuthService handles registration, login, and token lifecycle
type AuthService struct {
	accountRepo    identity.AccountRepository
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	operatorEmail  string
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAuthService creates a new authentication service. operatorEmail is
// the configured address that gets admin rights automatically.
func NewAuthService(
	accountRepo identity.AccountRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	operatorEmail string,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		accountRepo:    accountRepo,
		jwtService:     jwtService,
		blacklist:      blacklist,
		operatorEmail:  operatorEmail,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Register creates a new practitioner account
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AccountResponse, error) {
	if existing, err := s.accountRepo.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		s.logger.Warn("Registration attempt with taken email", zap.String("email", req.Email))
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to process password")
	}

	account, err := identity.NewAccount(req.Email, req.DisplayName, string(hash), s.operatorEmail)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, account)

	s.logger.Info("Account registered",
		zap.String("account_id", account.ID.String()),
		zap.String("role", string(account.Role)))

	resp := ToAccountResponse(account)
	return &resp, nil
}

// Login authenticates an account and issues a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	account, err := s.accountRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Warn("Login attempt for unknown email", zap.String("email", req.Email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("account_id", account.ID.String()))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	// Operator promotion happens here so a config change takes effect
	// on the next login without a migration.
	account.RecordLogin(time.Now(), s.operatorEmail)
	if err := s.accountRepo.Save(ctx, account); err != nil {
		s.logger.Error("Failed to record login", zap.Error(err))
	}
	s.publishDomainEvents(ctx, account)

	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      string(account.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	s.logger.Info("Account logged in", zap.String("account_id", account.ID.String()))

	return &LoginResponse{
		Account: ToAccountResponse(account),
		Tokens:  toTokenResponse(pair),
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair. Email
// and role are re-read from the account so role changes take effect.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}

	if revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID); err != nil {
		s.logger.Error("Failed to check token blacklist", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate refresh token")
	} else if revoked {
		return nil, shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
	}

	accountID, err := claims.GetAccountUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid account ID in token")
	}

	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		s.logger.Warn("Token refresh for missing account", zap.String("account_id", accountID.String()))
		return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
	}

	if invalidated, err := s.blacklist.IsAccountTokenInvalidated(ctx, claims.AccountID, claims.IssuedAt.Time); err != nil {
		s.logger.Error("Failed to check account invalidation", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate refresh token")
	} else if invalidated {
		return nil, shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
	}

	pair, err := s.jwtService.RefreshTokenPair(req.RefreshToken, account.Email, string(account.Role))
	if err != nil {
		return nil, mapTokenError(err)
	}

	// The old refresh token is single-use
	if ttl := claims.GetRemainingTTL(); ttl > 0 {
		if err := s.blacklist.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
			s.logger.Error("Failed to revoke used refresh token", zap.Error(err))
		}
	}

	s.logger.Info("Token refreshed", zap.String("account_id", account.ID.String()))

	resp := toTokenResponse(pair)
	return &resp, nil
}

// Logout revokes the presented access token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenJTI != "" && input.TokenTTL > 0 {
		if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.TokenTTL); err != nil {
			s.logger.Error("Failed to blacklist token on logout", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke token")
		}
	}

	s.logger.Info("Account logged out", zap.String("account_id", input.AccountID.String()))
	return nil
}

// ChangePassword verifies the old password and stores a new hash, then
// invalidates every outstanding token for the account.
func (s *AuthService) ChangePassword(ctx context.Context, accountID uuid.UUID, req ChangePasswordRequest) error {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.OldPassword)); err != nil {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Old password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash new password", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to process password")
	}

	if err := account.SetPasswordHash(string(hash)); err != nil {
		return err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return err
	}

	ttl := s.jwtService.GetRefreshTokenExpiration()
	if err := s.blacklist.AddAccountTokensToBlacklist(ctx, accountID.String(), ttl); err != nil {
		s.logger.Error("Failed to invalidate tokens after password change", zap.Error(err))
	}

	s.logger.Info("Password changed", zap.String("account_id", accountID.String()))
	return nil
}

func (s *AuthService) publishDomainEvents(ctx context.Context, account *identity.Account) {
	if s.eventPublisher == nil {
		return
	}
	events := account.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	account.ClearDomainEvents()
}

func toTokenResponse(pair *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType), errors.Is(err, auth.ErrInvalidClaims):
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	default:
		return shared.NewDomainError("TOKEN_ERROR", "Failed to validate refresh token")
	}
}
