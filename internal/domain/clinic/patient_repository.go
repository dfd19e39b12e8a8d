package clinic

import (
	"context"

	"github.com/google/uuid"
	"github.com/physiomanager/backend/internal/domain/shared"
)

// PatientRepository defines the persistence contract for patients.
// Every query is scoped to one tenant (practitioner account).
type PatientRepository interface {
	// FindByID finds a patient by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Patient, error)

	// FindAll finds all patients for a tenant matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Patient, error)

	// FindByStatus finds patients by treatment status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status PatientStatus, filter shared.Filter) ([]Patient, error)

	// FindActive finds all active patients for a tenant
	FindActive(ctx context.Context, tenantID uuid.UUID) ([]Patient, error)

	// Save creates or updates a patient
	Save(ctx context.Context, patient *Patient) error

	// Delete removes a patient. Session logs and payment records are
	// weak references and are deliberately left in place.
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// Count counts patients for a tenant
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// SessionLogRepository defines the persistence contract for the
// append-only session log collection.
type SessionLogRepository interface {
	// FindByID finds a session log by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SessionLog, error)

	// FindByPatientAndDate returns the first log recorded for the
	// patient on the date, or shared.ErrNotFound. The first log is
	// authoritative when duplicates exist.
	FindByPatientAndDate(ctx context.Context, tenantID, patientID uuid.UUID, date Date) (*SessionLog, error)

	// ExistsForDate reports whether any log exists for the patient on the date
	ExistsForDate(ctx context.Context, tenantID, patientID uuid.UUID, date Date) (bool, error)

	// FindByDate returns all logs for a tenant on one date
	FindByDate(ctx context.Context, tenantID uuid.UUID, date Date) ([]SessionLog, error)

	// FindByPatient returns all logs for one patient, newest first
	FindByPatient(ctx context.Context, tenantID, patientID uuid.UUID, filter shared.Filter) ([]SessionLog, error)

	// FindByDateRange returns all logs for a tenant with date in [start, end]
	FindByDateRange(ctx context.Context, tenantID uuid.UUID, start, end Date) ([]SessionLog, error)

	// Save appends a session log
	Save(ctx context.Context, log *SessionLog) error
}
