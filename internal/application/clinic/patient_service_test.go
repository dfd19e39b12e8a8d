package clinic

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/physiomanager/backend/internal/domain/shared"
)

func newPatientFixture() (*PatientService, *MockPatientRepository, *MockSessionLogRepository) {
	patientRepo := new(MockPatientRepository)
	sessionRepo := new(MockSessionLogRepository)
	service := NewPatientService(patientRepo, sessionRepo, nil, zap.NewNop())
	return service, patientRepo, sessionRepo
}

func TestPatientService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("creates an active patient", func(t *testing.T) {
		service, patientRepo, _ := newPatientFixture()
		patientRepo.On("Save", ctx, mock.AnythingOfType("*clinic.Patient")).Return(nil)

		resp, err := service.Create(ctx, tenantID, CreatePatientRequest{
			Name:          "Maria Santos",
			Diagnosis:     "Lumbar disc herniation",
			SessionCost:   decimal.NewFromInt(150),
			ScheduledDays: []int{1, 3, 5},
			StartDate:     "2024-01-01",
			PaymentMethod: "postpaid",
			PackageSize:   4,
		})
		require.NoError(t, err)

		assert.Equal(t, "active", resp.Status)
		assert.Equal(t, 0, resp.SessionsCompleted)
		assert.Equal(t, []int{1, 3, 5}, resp.ScheduledDays)
		assert.Equal(t, []string{"Monday", "Wednesday", "Friday"}, resp.DisplayDays)
		patientRepo.AssertExpectations(t)
	})

	t.Run("rejects invalid payment terms without touching the repository", func(t *testing.T) {
		service, patientRepo, _ := newPatientFixture()

		_, err := service.Create(ctx, tenantID, CreatePatientRequest{
			Name:          "Maria Santos",
			Diagnosis:     "Lumbar disc herniation",
			SessionCost:   decimal.NewFromInt(150),
			ScheduledDays: []int{1},
			StartDate:     "2024-01-01",
			PaymentMethod: "prepaid",
			PackageSize:   0,
		})
		assert.Error(t, err)
		patientRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestPatientService_Update(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("replaces editable fields", func(t *testing.T) {
		service, patientRepo, _ := newPatientFixture()
		patient := newTestPatient(t, tenantID, clinic.PaymentPerSession, 150, 0)

		patientRepo.On("FindByID", ctx, tenantID, patient.ID).Return(patient, nil)
		patientRepo.On("Save", ctx, patient).Return(nil)

		resp, err := service.Update(ctx, tenantID, patient.ID, UpdatePatientRequest{
			Name:          "Maria Santos",
			Diagnosis:     "Lumbar disc herniation, post-surgical",
			SessionCost:   decimal.NewFromInt(180),
			ScheduledDays: []int{2, 4},
			StartDate:     "2024-01-01",
			PaymentMethod: "per_session",
		})
		require.NoError(t, err)

		assert.Equal(t, "Lumbar disc herniation, post-surgical", resp.Diagnosis)
		assert.True(t, resp.SessionCost.Equal(decimal.NewFromInt(180)))
		assert.Equal(t, []int{2, 4}, resp.ScheduledDays)
	})

	t.Run("unknown patient", func(t *testing.T) {
		service, patientRepo, _ := newPatientFixture()
		patientID := uuid.New()
		patientRepo.On("FindByID", ctx, tenantID, patientID).Return(nil, shared.ErrNotFound)

		_, err := service.Update(ctx, tenantID, patientID, UpdatePatientRequest{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPatientService_CompleteAndReactivate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("complete stamps the end date", func(t *testing.T) {
		service, patientRepo, _ := newPatientFixture()
		patient := newTestPatient(t, tenantID, clinic.PaymentPerSession, 150, 0)

		patientRepo.On("FindByID", ctx, tenantID, patient.ID).Return(patient, nil)
		patientRepo.On("Save", ctx, patient).Return(nil)

		resp, err := service.Complete(ctx, tenantID, patient.ID)
		require.NoError(t, err)

		assert.Equal(t, "completed", resp.Status)
		require.NotNil(t, resp.EndDate)
		assert.Equal(t, clinic.Today().String(), *resp.EndDate)
	})

	t.Run("reactivate clears the end date", func(t *testing.T) {
		service, patientRepo, _ := newPatientFixture()
		patient := newTestPatient(t, tenantID, clinic.PaymentPerSession, 150, 0)
		require.NoError(t, patient.Complete(clinic.Today()))

		patientRepo.On("FindByID", ctx, tenantID, patient.ID).Return(patient, nil)
		patientRepo.On("Save", ctx, patient).Return(nil)

		resp, err := service.Reactivate(ctx, tenantID, patient.ID)
		require.NoError(t, err)

		assert.Equal(t, "active", resp.Status)
		assert.Nil(t, resp.EndDate)
	})
}

func TestPatientService_List(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("filters by status", func(t *testing.T) {
		service, patientRepo, _ := newPatientFixture()
		patient := newTestPatient(t, tenantID, clinic.PaymentPerSession, 150, 0)

		patientRepo.On("FindByStatus", ctx, tenantID, clinic.PatientStatusActive, mock.AnythingOfType("shared.Filter")).
			Return([]clinic.Patient{*patient}, nil)
		patientRepo.On("Count", ctx, tenantID, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil)

		patients, total, err := service.List(ctx, tenantID, PatientListFilter{Status: "active"})
		require.NoError(t, err)

		assert.Equal(t, int64(1), total)
		require.Len(t, patients, 1)
		assert.Equal(t, patient.ID, patients[0].ID)
	})

	t.Run("lists all without a status filter", func(t *testing.T) {
		service, patientRepo, _ := newPatientFixture()

		patientRepo.On("FindAll", ctx, tenantID, mock.AnythingOfType("shared.Filter")).
			Return([]clinic.Patient{}, nil)
		patientRepo.On("Count", ctx, tenantID, mock.AnythingOfType("shared.Filter")).Return(int64(0), nil)

		patients, total, err := service.List(ctx, tenantID, PatientListFilter{})
		require.NoError(t, err)
		assert.Empty(t, patients)
		assert.Equal(t, int64(0), total)
	})
}

func TestPatientService_Delete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("removes the file", func(t *testing.T) {
		service, patientRepo, _ := newPatientFixture()
		patient := newTestPatient(t, tenantID, clinic.PaymentPerSession, 150, 0)

		patientRepo.On("FindByID", ctx, tenantID, patient.ID).Return(patient, nil)
		patientRepo.On("Delete", ctx, tenantID, patient.ID).Return(nil)

		err := service.Delete(ctx, tenantID, patient.ID)
		require.NoError(t, err)
		patientRepo.AssertExpectations(t)
	})
}

func TestPatientService_History(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("returns the patient's logs", func(t *testing.T) {
		service, patientRepo, sessionRepo := newPatientFixture()
		patient := newTestPatient(t, tenantID, clinic.PaymentPerSession, 150, 0)

		log, err := clinic.NewSessionLog(tenantID, patient, clinic.Date("2024-01-08"), clinic.SessionAttended)
		require.NoError(t, err)

		patientRepo.On("FindByID", ctx, tenantID, patient.ID).Return(patient, nil)
		sessionRepo.On("FindByPatient", ctx, tenantID, patient.ID, mock.AnythingOfType("shared.Filter")).
			Return([]clinic.SessionLog{*log}, nil)

		logs, err := service.History(ctx, tenantID, patient.ID, shared.DefaultFilter())
		require.NoError(t, err)

		require.Len(t, logs, 1)
		assert.Equal(t, "2024-01-08", logs[0].Date)
		assert.True(t, logs[0].Cost.Equal(decimal.NewFromInt(150)))
	})
}
