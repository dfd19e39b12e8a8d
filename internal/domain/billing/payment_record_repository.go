package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/physiomanager/backend/internal/domain/shared"
)

// PaymentRecordRepository defines the persistence contract for the
// append-only payment collection. All queries are tenant-scoped.
type PaymentRecordRepository interface {
	// FindByID finds a payment record by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PaymentRecord, error)

	// FindByPatient returns all payments for one patient, newest first
	FindByPatient(ctx context.Context, tenantID, patientID uuid.UUID, filter shared.Filter) ([]PaymentRecord, error)

	// FindByDateRange returns all payments with date in [start, end]
	FindByDateRange(ctx context.Context, tenantID uuid.UUID, start, end clinic.Date) ([]PaymentRecord, error)

	// FindAll returns all payments for a tenant matching the filter
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PaymentRecord, error)

	// Save appends a payment record
	Save(ctx context.Context, record *PaymentRecord) error

	// Count counts payments for a tenant
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
