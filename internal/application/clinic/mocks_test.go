package clinic

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/physiomanager/backend/internal/domain/billing"
	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/physiomanager/backend/internal/domain/shared"
)

// MockPatientRepository is a mock implementation of clinic.PatientRepository
type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*clinic.Patient, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clinic.Patient), args.Error(1)
}

func (m *MockPatientRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]clinic.Patient, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]clinic.Patient), args.Error(1)
}

func (m *MockPatientRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status clinic.PatientStatus, filter shared.Filter) ([]clinic.Patient, error) {
	args := m.Called(ctx, tenantID, status, filter)
	return args.Get(0).([]clinic.Patient), args.Error(1)
}

func (m *MockPatientRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]clinic.Patient, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]clinic.Patient), args.Error(1)
}

func (m *MockPatientRepository) Save(ctx context.Context, patient *clinic.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *MockPatientRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockPatientRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockSessionLogRepository is a mock implementation of clinic.SessionLogRepository
type MockSessionLogRepository struct {
	mock.Mock
}

func (m *MockSessionLogRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*clinic.SessionLog, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clinic.SessionLog), args.Error(1)
}

func (m *MockSessionLogRepository) FindByPatientAndDate(ctx context.Context, tenantID, patientID uuid.UUID, date clinic.Date) (*clinic.SessionLog, error) {
	args := m.Called(ctx, tenantID, patientID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clinic.SessionLog), args.Error(1)
}

func (m *MockSessionLogRepository) ExistsForDate(ctx context.Context, tenantID, patientID uuid.UUID, date clinic.Date) (bool, error) {
	args := m.Called(ctx, tenantID, patientID, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionLogRepository) FindByDate(ctx context.Context, tenantID uuid.UUID, date clinic.Date) ([]clinic.SessionLog, error) {
	args := m.Called(ctx, tenantID, date)
	return args.Get(0).([]clinic.SessionLog), args.Error(1)
}

func (m *MockSessionLogRepository) FindByPatient(ctx context.Context, tenantID, patientID uuid.UUID, filter shared.Filter) ([]clinic.SessionLog, error) {
	args := m.Called(ctx, tenantID, patientID, filter)
	return args.Get(0).([]clinic.SessionLog), args.Error(1)
}

func (m *MockSessionLogRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, start, end clinic.Date) ([]clinic.SessionLog, error) {
	args := m.Called(ctx, tenantID, start, end)
	return args.Get(0).([]clinic.SessionLog), args.Error(1)
}

func (m *MockSessionLogRepository) Save(ctx context.Context, log *clinic.SessionLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

// MockPaymentRecordRepository is a mock implementation of billing.PaymentRecordRepository
type MockPaymentRecordRepository struct {
	mock.Mock
}

func (m *MockPaymentRecordRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.PaymentRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRecordRepository) FindByPatient(ctx context.Context, tenantID, patientID uuid.UUID, filter shared.Filter) ([]billing.PaymentRecord, error) {
	args := m.Called(ctx, tenantID, patientID, filter)
	return args.Get(0).([]billing.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRecordRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, start, end clinic.Date) ([]billing.PaymentRecord, error) {
	args := m.Called(ctx, tenantID, start, end)
	return args.Get(0).([]billing.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRecordRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]billing.PaymentRecord, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRecordRepository) Save(ctx context.Context, record *billing.PaymentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPaymentRecordRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}
