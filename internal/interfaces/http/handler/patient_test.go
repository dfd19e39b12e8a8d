package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appclinic "github.com/physiomanager/backend/internal/application/clinic"
	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/physiomanager/backend/internal/domain/shared"
	"github.com/physiomanager/backend/internal/infrastructure/event"
	"github.com/physiomanager/backend/internal/interfaces/http/dto"
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clinic.Patient), args.Error(1)
}

func (m *MockPatientRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status clinic.PatientStatus, filter shared.Filter) ([]clinic.Patient, error) {
	args := m.Called(ctx, tenantID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clinic.Patient), args.Error(1)
}

func (m *MockPatientRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]clinic.Patient, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clinic.SessionLog), args.Error(1)
}

func (m *MockSessionLogRepository) FindByPatient(ctx context.Context, tenantID, patientID uuid.UUID, filter shared.Filter) ([]clinic.SessionLog, error) {
	args := m.Called(ctx, tenantID, patientID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clinic.SessionLog), args.Error(1)
}

func (m *MockSessionLogRepository) FindByDateRange(ctx context.Context, tenantID uuid.UUID, start, end clinic.Date) ([]clinic.SessionLog, error) {
	args := m.Called(ctx, tenantID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clinic.SessionLog), args.Error(1)
}

func (m *MockSessionLogRepository) Save(ctx context.Context, log *clinic.SessionLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func newPatientHandlerForTest(patientRepo clinic.PatientRepository, sessionRepo clinic.SessionLogRepository) *PatientHandler {
	bus := event.NewInMemoryEventBus(zap.NewNop())
	service := appclinic.NewPatientService(patientRepo, sessionRepo, bus, zap.NewNop())
	importService := appclinic.NewPatientImportService(service, zap.NewNop())
	return NewPatientHandler(service, importService)
}

func newPatientAggregate(t *testing.T, tenantID uuid.UUID, name string) *clinic.Patient {
	t.Helper()

	patient, err := clinic.NewPatient(tenantID, clinic.NewPatientParams{
		Name:          name,
		Diagnosis:     "Lower back pain",
		SessionCost:   decimal.NewFromInt(50),
		ScheduledDays: []int{1, 3},
		StartDate:     "2026-03-02",
		PaymentMethod: clinic.PaymentPerSession,
	})
	require.NoError(t, err)
	patient.ClearDomainEvents()
	return patient
}

func TestPatientHandler_Create(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates a patient", func(t *testing.T) {
		patientRepo := new(MockPatientRepository)
		patientRepo.On("Save", mock.Anything, mock.AnythingOfType("*clinic.Patient")).Return(nil)

		h := newPatientHandlerForTest(patientRepo, new(MockSessionLogRepository))
		w := performJSON(t, h.Create, http.MethodPost, "/api/v1/patients", gin.H{
			"name":           "Quinn Alvarez",
			"diagnosis":      "Frozen shoulder",
			"session_cost":   "60",
			"scheduled_days": []int{2, 4},
			"start_date":     "2026-03-03",
			"payment_method": "per_session",
		}, func(c *gin.Context) {
			setAccountContext(c, tenantID)
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "Quinn Alvarez", data["name"])
		assert.Equal(t, "active", data["status"])
		patientRepo.AssertExpectations(t)
	})

	t.Run("rejects an invalid scheduled day", func(t *testing.T) {
		patientRepo := new(MockPatientRepository)

		h := newPatientHandlerForTest(patientRepo, new(MockSessionLogRepository))
		w := performJSON(t, h.Create, http.MethodPost, "/api/v1/patients", gin.H{
			"name":           "Quinn Alvarez",
			"diagnosis":      "Frozen shoulder",
			"scheduled_days": []int{9},
			"start_date":     "2026-03-03",
			"payment_method": "per_session",
		}, func(c *gin.Context) {
			setAccountContext(c, tenantID)
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		patientRepo.AssertNotCalled(t, "Save")
	})

	t.Run("requires authentication", func(t *testing.T) {
		h := newPatientHandlerForTest(new(MockPatientRepository), new(MockSessionLogRepository))
		w := performJSON(t, h.Create, http.MethodPost, "/api/v1/patients", gin.H{}, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestPatientHandler_Get(t *testing.T) {
	tenantID := uuid.New()

	t.Run("returns a patient", func(t *testing.T) {
		patient := newPatientAggregate(t, tenantID, "Quinn Alvarez")
		patientRepo := new(MockPatientRepository)
		patientRepo.On("FindByID", mock.Anything, tenantID, patient.ID).Return(patient, nil)

		h := newPatientHandlerForTest(patientRepo, new(MockSessionLogRepository))
		w := performJSON(t, h.Get, http.MethodGet, "/api/v1/patients/"+patient.ID.String(), nil, func(c *gin.Context) {
			setAccountContext(c, tenantID)
			c.Params = gin.Params{{Key: "id", Value: patient.ID.String()}}
		})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("maps a missing patient to 404", func(t *testing.T) {
		missing := uuid.New()
		patientRepo := new(MockPatientRepository)
		patientRepo.On("FindByID", mock.Anything, tenantID, missing).Return(nil, shared.ErrNotFound)

		h := newPatientHandlerForTest(patientRepo, new(MockSessionLogRepository))
		w := performJSON(t, h.Get, http.MethodGet, "/api/v1/patients/"+missing.String(), nil, func(c *gin.Context) {
			setAccountContext(c, tenantID)
			c.Params = gin.Params{{Key: "id", Value: missing.String()}}
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects a malformed ID", func(t *testing.T) {
		h := newPatientHandlerForTest(new(MockPatientRepository), new(MockSessionLogRepository))
		w := performJSON(t, h.Get, http.MethodGet, "/api/v1/patients/garbage", nil, func(c *gin.Context) {
			setAccountContext(c, tenantID)
			c.Params = gin.Params{{Key: "id", Value: "garbage"}}
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPatientHandler_List(t *testing.T) {
	tenantID := uuid.New()

	patients := []clinic.Patient{
		*newPatientAggregate(t, tenantID, "Quinn Alvarez"),
		*newPatientAggregate(t, tenantID, "Morgan Reyes"),
	}

	patientRepo := new(MockPatientRepository)
	patientRepo.On("FindAll", mock.Anything, tenantID, mock.AnythingOfType("shared.Filter")).Return(patients, nil)
	patientRepo.On("Count", mock.Anything, tenantID, mock.AnythingOfType("shared.Filter")).Return(int64(2), nil)

	h := newPatientHandlerForTest(patientRepo, new(MockSessionLogRepository))
	w := performJSON(t, h.List, http.MethodGet, "/api/v1/patients?page=1&page_size=20", nil, func(c *gin.Context) {
		setAccountContext(c, tenantID)
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)

	data := resp.Data.([]interface{})
	assert.Len(t, data, 2)
}

func TestPatientHandler_Delete(t *testing.T) {
	tenantID := uuid.New()
	patient := newPatientAggregate(t, tenantID, "Quinn Alvarez")

	patientRepo := new(MockPatientRepository)
	patientRepo.On("FindByID", mock.Anything, tenantID, patient.ID).Return(patient, nil)
	patientRepo.On("Delete", mock.Anything, tenantID, patient.ID).Return(nil)

	h := newPatientHandlerForTest(patientRepo, new(MockSessionLogRepository))
	w := performJSON(t, h.Delete, http.MethodDelete, "/api/v1/patients/"+patient.ID.String(), nil, func(c *gin.Context) {
		setAccountContext(c, tenantID)
		c.Params = gin.Params{{Key: "id", Value: patient.ID.String()}}
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	patientRepo.AssertExpectations(t)
}

func TestPatientHandler_CompleteAndReactivate(t *testing.T) {
	tenantID := uuid.New()

	t.Run("completes an active patient", func(t *testing.T) {
		patient := newPatientAggregate(t, tenantID, "Quinn Alvarez")
		patientRepo := new(MockPatientRepository)
		patientRepo.On("FindByID", mock.Anything, tenantID, patient.ID).Return(patient, nil)
		patientRepo.On("Save", mock.Anything, mock.AnythingOfType("*clinic.Patient")).Return(nil)

		h := newPatientHandlerForTest(patientRepo, new(MockSessionLogRepository))
		w := performJSON(t, h.Complete, http.MethodPost, "/api/v1/patients/"+patient.ID.String()+"/complete", nil, func(c *gin.Context) {
			setAccountContext(c, tenantID)
			c.Params = gin.Params{{Key: "id", Value: patient.ID.String()}}
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "completed", data["status"])
	})

	t.Run("completing twice is rejected", func(t *testing.T) {
		patient := newPatientAggregate(t, tenantID, "Quinn Alvarez")
		require.NoError(t, patient.Complete(clinic.MakeDate(2026, 4, 1)))
		patient.ClearDomainEvents()

		patientRepo := new(MockPatientRepository)
		patientRepo.On("FindByID", mock.Anything, tenantID, patient.ID).Return(patient, nil)

		h := newPatientHandlerForTest(patientRepo, new(MockSessionLogRepository))
		w := performJSON(t, h.Complete, http.MethodPost, "/api/v1/patients/"+patient.ID.String()+"/complete", nil, func(c *gin.Context) {
			setAccountContext(c, tenantID)
			c.Params = gin.Params{{Key: "id", Value: patient.ID.String()}}
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
