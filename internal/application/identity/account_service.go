package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/physiomanager/backend/internal/domain/identity"
	"github.com/physiomanager/backend/internal/domain/shared"
	"github.com/physiomanager/backend/internal/infrastructure/auth"
)

// AccountService handles account profile and admin management
type AccountService struct {
	accountRepo    identity.AccountRepository
	blacklist      auth.TokenBlacklist
	jwtService     *auth.JWTService
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	accountRepo identity.AccountRepository,
	blacklist auth.TokenBlacklist,
	jwtService *auth.JWTService,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		accountRepo:    accountRepo,
		blacklist:      blacklist,
		jwtService:     jwtService,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// GetByID returns a single account
func (s *AccountService) GetByID(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// List returns accounts with pagination, newest first
func (s *AccountService) List(ctx context.Context, filter AccountListFilter) ([]AccountResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	accounts, err := s.accountRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.accountRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToAccountResponses(accounts), total, nil
}

// UpdateProfile changes an account's display name
func (s *AccountService) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
	}

	if err := account.SetDisplayName(req.DisplayName); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	resp := ToAccountResponse(account)
	return &resp, nil
}

// SetRole changes another account's role. Admins cannot change their
// own role, which keeps at least one admin in the system.
func (s *AccountService) SetRole(ctx context.Context, actorID, targetID uuid.UUID, req SetRoleRequest) (*AccountResponse, error) {
	if actorID == targetID {
		return nil, shared.NewDomainError("SELF_ROLE_CHANGE", "Cannot change your own role")
	}

	account, err := s.accountRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
	}

	if err := account.SetRole(identity.Role(req.Role)); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, account)

	s.logger.Info("Account role changed",
		zap.String("account_id", targetID.String()),
		zap.String("role", req.Role),
		zap.String("changed_by", actorID.String()))

	// A demoted admin loses access immediately
	ttl := s.jwtService.GetRefreshTokenExpiration()
	if err := s.blacklist.AddAccountTokensToBlacklist(ctx, targetID.String(), ttl); err != nil {
		s.logger.Error("Failed to invalidate tokens after role change", zap.Error(err))
	}

	resp := ToAccountResponse(account)
	return &resp, nil
}

// Delete removes another account and revokes its tokens. Admins cannot
// delete themselves.
func (s *AccountService) Delete(ctx context.Context, actorID, targetID uuid.UUID) error {
	if actorID == targetID {
		return shared.NewDomainError("SELF_DELETE", "Cannot delete your own account")
	}

	if _, err := s.accountRepo.FindByID(ctx, targetID); err != nil {
		return shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
	}

	if err := s.accountRepo.Delete(ctx, targetID); err != nil {
		return err
	}

	ttl := s.jwtService.GetRefreshTokenExpiration()
	if err := s.blacklist.AddAccountTokensToBlacklist(ctx, targetID.String(), ttl); err != nil {
		s.logger.Error("Failed to invalidate tokens after account deletion", zap.Error(err))
	}

	s.logger.Info("Account deleted",
		zap.String("account_id", targetID.String()),
		zap.String("deleted_by", actorID.String()))

	return nil
}

func (s *AccountService) publishDomainEvents(ctx context.Context, account *identity.Account) {
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
