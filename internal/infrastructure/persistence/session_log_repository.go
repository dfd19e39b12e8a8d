package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/physiomanager/backend/internal/domain/shared"
)

// GormSessionLogRepository implements clinic.SessionLogRepository using GORM
type GormSessionLogRepository struct {
	db *gorm.DB
}

// NewGormSessionLogRepository creates a new GormSessionLogRepository
func NewGormSessionLogRepository(db *gorm.DB) *GormSessionLogRepository {
	return &GormSessionLogRepository{db: db}
}

// FindByID finds a session log by ID within a tenant
func (r *GormSessionLogRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*clinic.SessionLog, error) {
	var log clinic.SessionLog
	if err := dbFor(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&log).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// FindByPatientAndDate finds the log for a patient on a given date.
// The oldest log wins when duplicates exist.
func (r *GormSessionLogRepository) FindByPatientAndDate(ctx context.Context, tenantID, patientID uuid.UUID, date clinic.Date) (*clinic.SessionLog, error) {
	var log clinic.SessionLog
	if err := dbFor(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND patient_id = ? AND date = ?", tenantID, patientID, date.String()).
		Order("created_at ASC").
		First(&log).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// ExistsForDate reports whether a patient already has a log on a date
func (r *GormSessionLogRepository) ExistsForDate(ctx context.Context, tenantID, patientID uuid.UUID, date clinic.Date) (bool, error) {
	var count int64
	if err := dbFor(ctx, r.db).WithContext(ctx).Model(&clinic.SessionLog{}).
		Where("tenant_id = ? AND patient_id = ? AND date = ?", tenantID, patientID, date.String()).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByDate finds all session logs for a tenant on a given date
func (r *GormSessionLogRepository) FindByDate(ctx context.Context, tenantID uuid.UUID, date clinic.Date) ([]clinic.SessionLog, error) {
	var logs []clinic.SessionLog
	if err := dbFor(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND date = ?", tenantID, date.String()).
		Order("created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// FindByPatient finds session logs for a patient, newest first
func (r *GormSessionLogRepository) FindByPatient(ctx context.Context, tenantID, patientID uuid.UUID, filter shared.Filter) ([]clinic.SessionLog, error) {
	var logs []clinic.SessionLog
	query := dbFor(ctx, r.db).WithContext(ctx).Model(&clinic.SessionLog{}).
		Where("tenant_id = ? AND patient_id = ?", tenantID, patientID)
	query = r.applyFilter(query, filter)
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// FindByDateRange finds all session logs within [start, end] inclusive
func (r *GormSessionLogRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, start, end clinic.Date) ([]clinic.SessionLog, error) {
	var logs []clinic.SessionLog
	if err := dbFor(ctx, r.db).WithContext(ctx).
		Where("tenant_id = ? AND date >= ? AND date <= ?", tenantID, start.String(), end.String()).
		Order("date ASC, created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Save creates or updates a session log. A duplicate (patient, date)
// pair trips the unique index; the violation surfaces as ALREADY_LOGGED
// so racing check-ins past the existence check still serialize.
func (r *GormSessionLogRepository) Save(ctx context.Context, log *clinic.SessionLog) error {
	err := dbFor(ctx, r.db).WithContext(ctx).Save(log).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyLogged
	}
	return err
}

// applyFilter applies filter options to the query
func (r *GormSessionLogRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "paid":
			query = query.Where("paid = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, SessionLogSortFields, "date")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("date DESC, created_at DESC")
	}

	return query
}

// Ensure GormSessionLogRepository implements SessionLogRepository
var _ clinic.SessionLogRepository = (*GormSessionLogRepository)(nil)
