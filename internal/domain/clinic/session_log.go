package clinic

import (
	"github.com/google/uuid"
	"github.com/physiomanager/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SessionStatus is the recorded outcome of a scheduled session
type SessionStatus string

const (
	SessionAttended  SessionStatus = "attended"
	SessionCancelled SessionStatus = "cancelled"
)

// Valid reports whether the status is a known outcome
func (s SessionStatus) Valid() bool {
	return s == SessionAttended || s == SessionCancelled
}

// SessionLog is one check-in record: the outcome of a patient's session
// on a specific date. Logs are append-only and immutable once written.
// PatientID is a weak reference; deleting a patient does not cascade.
// The unique (patient, date) index backs the one-log-per-day rule under
// concurrent check-ins.
type SessionLog struct {
	shared.TenantAggregateRoot
	PatientID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_session_patient_date,priority:1"`
	Date      Date            `gorm:"type:varchar(10);not null;uniqueIndex:idx_session_patient_date,priority:2;index"`
	Status    SessionStatus   `gorm:"type:varchar(20);not null"`
	Cost      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // snapshot of the patient's session cost at logging time
	Paid      bool            `gorm:"not null;default:false"`                // informational only; payments are the source of truth
}

// TableName returns the table name for GORM
func (SessionLog) TableName() string {
	return "session_logs"
}

// NewSessionLog creates a session log for a patient on a date. The cost
// is snapshotted from the patient so later fee changes do not rewrite
// history.
func NewSessionLog(tenantID uuid.UUID, patient *Patient, date Date, status SessionStatus) (*SessionLog, error) {
	if !status.Valid() {
		return nil, shared.NewDomainError("INVALID_SESSION_STATUS", "Session status must be 'attended' or 'cancelled'")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Session date is required")
	}

	log := &SessionLog{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PatientID:           patient.ID,
		Date:                date,
		Status:              status,
		Cost:                patient.SessionCost,
		Paid:                false,
	}

	log.AddDomainEvent(NewSessionLoggedEvent(log))

	return log, nil
}

// IsAttended reports whether the session took place
func (l *SessionLog) IsAttended() bool {
	return l.Status == SessionAttended
}
