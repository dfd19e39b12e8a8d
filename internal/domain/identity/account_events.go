package identity

import (
	"github.com/google/uuid"
	"github.com/physiomanager/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeAccount = "Account"

// Event type constants
const (
	EventTypeAccountCreated     = "AccountCreated"
	EventTypeAccountRoleChanged = "AccountRoleChanged"
)

// AccountCreatedEvent is published when an account is registered
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID `json:"account_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(account *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountCreated, AggregateTypeAccount, account.ID, account.ID),
		AccountID:       account.ID,
		Email:           account.Email,
		Role:            account.Role,
	}
}

// AccountRoleChangedEvent is published when an account's role changes
type AccountRoleChangedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID `json:"account_id"`
	OldRole   Role      `json:"old_role"`
	NewRole   Role      `json:"new_role"`
}

// NewAccountRoleChangedEvent creates a new AccountRoleChangedEvent
func NewAccountRoleChangedEvent(account *Account, oldRole, newRole Role) *AccountRoleChangedEvent {
	return &AccountRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountRoleChanged, AggregateTypeAccount, account.ID, account.ID),
		AccountID:       account.ID,
		OldRole:         oldRole,
		NewRole:         newRole,
	}
}
