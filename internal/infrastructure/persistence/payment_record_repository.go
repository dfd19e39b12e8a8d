package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/physiomanager/backend/internal/domain/billing"
	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/physiomanager/backend/internal/domain/shared"
)

// GormPaymentRecordRepository implements billing.PaymentRecordRepository using GORM
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewGormPaymentRecordRepository creates a new GormPaymentRecordRepository
func NewGormPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

// FindByID finds a payment record by ID within a tenant
func (r *GormPaymentRecordRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.PaymentRecord, error) {
	var record billing.PaymentRecord
	if err := dbFor(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByPatient returns all payments for one patient, newest first
func (r *GormPaymentRecordRepository) FindByPatient(ctx context.Context, tenantID, patientID uuid.UUID, filter shared.Filter) ([]billing.PaymentRecord, error) {
	var records []billing.PaymentRecord
	query := dbFor(ctx, r.db).WithContext(ctx).Model(&billing.PaymentRecord{}).
		Where("tenant_id = ? AND patient_id = ?", tenantID, patientID)
	query = r.applyFilter(query, filter)
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByDateRange returns all payments with date in [start, end]
func (r *GormPaymentRecordRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, start, end clinic.Date) ([]billing.PaymentRecord, error) {
	var records []billing.PaymentRecord
	if err := dbFor(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND date >= ? AND date <= ?", tenantID, start.String(), end.String()).
		Order("date ASC, created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindAll returns all payments for a tenant matching the filter
func (r *GormPaymentRecordRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]billing.PaymentRecord, error) {
	var records []billing.PaymentRecord
	query := dbFor(ctx, r.db).WithContext(ctx).Model(&billing.PaymentRecord{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save appends a payment record
func (r *GormPaymentRecordRepository) Save(ctx context.Context, record *billing.PaymentRecord) error {
	return dbFor(ctx, r.db).WithContext(ctx).Save(record).Error
}

// Count counts payments for a tenant
func (r *GormPaymentRecordRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := dbFor(ctx, r.db).WithContext(ctx).Model(&billing.PaymentRecord{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormPaymentRecordRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, PaymentRecordSortFields, "date")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("date DESC, created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPaymentRecordRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "patient_id":
			query = query.Where("patient_id = ?", value)
		}
	}

	return query
}

// Ensure GormPaymentRecordRepository implements PaymentRecordRepository
var _ billing.PaymentRecordRepository = (*GormPaymentRecordRepository)(nil)
