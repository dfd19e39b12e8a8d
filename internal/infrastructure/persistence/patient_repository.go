package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/physiomanager/backend/internal/domain/shared"
)

// GormPatientRepository implements clinic.PatientRepository using GORM
type GormPatientRepository struct {
	db *gorm.DB
}

// NewGormPatientRepository creates a new GormPatientRepository
func NewGormPatientRepository(db *gorm.DB) *GormPatientRepository {
	return &GormPatientRepository{db: db}
}

// FindByID finds a patient by ID within a tenant
func (r *GormPatientRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*clinic.Patient, error) {
	var patient clinic.Patient
	if err := dbFor(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &patient, nil
}

// FindAll finds all patients for a tenant matching the filter
func (r *GormPatientRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]clinic.Patient, error) {
	var patients []clinic.Patient
	query := r.applyFilter(
		dbFor(ctx, r.db).WithContext(ctx).Model(&clinic.Patient{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

// FindByStatus finds patients by treatment status for a tenant
func (r *GormPatientRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status clinic.PatientStatus, filter shared.Filter) ([]clinic.Patient, error) {
	var patients []clinic.Patient
	query := r.applyFilter(
		dbFor(ctx, r.db).WithContext(ctx).Model(&clinic.Patient{}).
			Where("tenant_id = ? AND status = ?", tenantID, status),
		filter,
	)
	if err := query.Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

// FindActive finds all active patients for a tenant, roster order
func (r *GormPatientRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]clinic.Patient, error) {
	var patients []clinic.Patient
	if err := dbFor(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, clinic.PatientStatusActive).
		Order("start_date ASC, created_at ASC").
		Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

// Save creates or updates a patient
func (r *GormPatientRepository) Save(ctx context.Context, patient *clinic.Patient) error {
	return dbFor(ctx, r.db).WithContext(ctx).Save(patient).Error
}

// Delete removes a patient within a tenant. Session logs and payments
// keep their weak references.
func (r *GormPatientRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := dbFor(ctx, r.db).WithContext(ctx).
		Delete(&clinic.Patient{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts patients for a tenant
func (r *GormPatientRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := dbFor(ctx, r.db).WithContext(ctx).Model(&clinic.Patient{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormPatientRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, PatientSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("start_date ASC, created_at ASC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPatientRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(diagnosis) LIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "payment_method":
			query = query.Where("payment_method = ?", value)
		}
	}

	return query
}

// Ensure GormPatientRepository implements PatientRepository
var _ clinic.PatientRepository = (*GormPatientRepository)(nil)
