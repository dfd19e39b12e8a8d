package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/physiomanager/backend/internal/domain/shared"
)

// Role represents an account's authorization level
type Role string

const (
	RoleDoctor Role = "doctor"
	RoleAdmin  Role = "admin"
)

// Valid reports whether the role is known
func (r Role) Valid() bool {
	return r == RoleDoctor || r == RoleAdmin
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Account is one practitioner account. The account ID doubles as the
// tenant ID scoping all clinical and billing records. Role admin is
// granted automatically to the configured operator email and defaults
// to doctor for everyone else.
type Account struct {
	shared.BaseAggregateRoot
	Email        string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	DisplayName  string     `gorm:"type:varchar(100);not null"`
	PasswordHash string     `gorm:"type:varchar(100);not null"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'doctor'"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a new account. The email is lowercased; the role
// is admin when the email matches the designated operator email.
func NewAccount(email, displayName, passwordHash string, operatorEmail string) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if displayName == "" {
		return nil, shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot be empty")
	}
	if len(displayName) > 100 {
		return nil, shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 100 characters")
	}
	if passwordHash == "" {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password hash cannot be empty")
	}

	role := RoleDoctor
	if isOperatorEmail(email, operatorEmail) {
		role = RoleAdmin
	}

	account := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		DisplayName:       displayName,
		PasswordHash:      passwordHash,
		Role:              role,
	}

	account.AddDomainEvent(NewAccountCreatedEvent(account))

	return account, nil
}

// RecordLogin stamps the login time and re-checks operator promotion:
// if the configured operator email matches but the stored role is still
// doctor, the account is promoted.
func (a *Account) RecordLogin(at time.Time, operatorEmail string) {
	a.LastLoginAt = &at
	if isOperatorEmail(a.Email, operatorEmail) && a.Role != RoleAdmin {
		a.Role = RoleAdmin
		a.AddDomainEvent(NewAccountRoleChangedEvent(a, RoleDoctor, RoleAdmin))
	}
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// SetRole changes the account's role
func (a *Account) SetRole(role Role) error {
	if !role.Valid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be 'doctor' or 'admin'")
	}
	if a.Role == role {
		return shared.NewDomainError("ROLE_UNCHANGED", "Account already has this role")
	}

	oldRole := a.Role
	a.Role = role
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAccountRoleChangedEvent(a, oldRole, role))

	return nil
}

// SetPasswordHash replaces the stored password hash. Verification of
// the old password happens in the application layer.
func (a *Account) SetPasswordHash(hash string) error {
	if hash == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password hash cannot be empty")
	}
	a.PasswordHash = hash
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// SetDisplayName updates the profile display name
func (a *Account) SetDisplayName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 100 characters")
	}
	a.DisplayName = name
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// IsAdmin reports whether the account has admin rights
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func isOperatorEmail(email, operatorEmail string) bool {
	return operatorEmail != "" && strings.EqualFold(email, operatorEmail)
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
