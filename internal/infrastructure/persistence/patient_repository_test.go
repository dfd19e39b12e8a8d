package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/physiomanager/backend/internal/domain/billing"
	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/physiomanager/backend/internal/domain/identity"
	"github.com/physiomanager/backend/internal/domain/shared"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&clinic.Patient{},
		&clinic.SessionLog{},
		&billing.PaymentRecord{},
		&identity.Account{},
	)
	require.NoError(t, err)

	return db
}

func newTestPatient(t *testing.T, tenantID uuid.UUID, name string) *clinic.Patient {
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

func TestGormPatientRepository_SaveAndFindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPatientRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("saves and finds a patient", func(t *testing.T) {
		patient := newTestPatient(t, tenantID, "Dana Morales")
		require.NoError(t, repo.Save(ctx, patient))

		found, err := repo.FindByID(ctx, tenantID, patient.ID)
		require.NoError(t, err)
		assert.Equal(t, patient.ID, found.ID)
		assert.Equal(t, "Dana Morales", found.Name)
		assert.Equal(t, clinic.PatientStatusActive, found.Status)
		assert.True(t, found.SessionCost.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, []int{1, 3}, found.ScheduledDays.Indices())
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, tenantID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("does not cross tenant boundaries", func(t *testing.T) {
		patient := newTestPatient(t, tenantID, "Scoped Patient")
		require.NoError(t, repo.Save(ctx, patient))

		_, err := repo.FindByID(ctx, uuid.New(), patient.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormPatientRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPatientRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	patient := newTestPatient(t, tenantID, "Eli Navarro")
	require.NoError(t, repo.Save(ctx, patient))

	patient.RecordAttendance()
	require.NoError(t, repo.Save(ctx, patient))

	found, err := repo.FindByID(ctx, tenantID, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.SessionsCompleted)
}

func TestGormPatientRepository_FindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPatientRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	for _, name := range []string{"Alba Quinn", "Bruno Quinn", "Cara Reyes"} {
		require.NoError(t, repo.Save(ctx, newTestPatient(t, tenantID, name)))
	}
	require.NoError(t, repo.Save(ctx, newTestPatient(t, uuid.New(), "Other Tenant")))

	t.Run("returns only the tenant's patients", func(t *testing.T) {
		patients, err := repo.FindAll(ctx, tenantID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, patients, 3)
	})

	t.Run("applies pagination", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Page = 2
		filter.PageSize = 2
		patients, err := repo.FindAll(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Len(t, patients, 1)
	})

	t.Run("searches by name case-insensitively", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "quinn"
		patients, err := repo.FindAll(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Len(t, patients, 2)
	})

	t.Run("counts with the same filter", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "quinn"
		count, err := repo.Count(ctx, tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

func TestGormPatientRepository_FindByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPatientRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	active := newTestPatient(t, tenantID, "Active Patient")
	require.NoError(t, repo.Save(ctx, active))

	completed := newTestPatient(t, tenantID, "Completed Patient")
	require.NoError(t, completed.Complete(clinic.MakeDate(2026, 4, 1)))
	completed.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, completed))

	t.Run("filters by status", func(t *testing.T) {
		patients, err := repo.FindByStatus(ctx, tenantID, clinic.PatientStatusCompleted, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, patients, 1)
		assert.Equal(t, "Completed Patient", patients[0].Name)
	})

	t.Run("FindActive skips completed patients", func(t *testing.T) {
		patients, err := repo.FindActive(ctx, tenantID)
		require.NoError(t, err)
		require.Len(t, patients, 1)
		assert.Equal(t, "Active Patient", patients[0].Name)
	})
}

func TestGormPatientRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPatientRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("deletes an existing patient", func(t *testing.T) {
		patient := newTestPatient(t, tenantID, "To Delete")
		require.NoError(t, repo.Save(ctx, patient))

		require.NoError(t, repo.Delete(ctx, tenantID, patient.ID))

		_, err := repo.FindByID(ctx, tenantID, patient.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("returns not found for missing patient", func(t *testing.T) {
		err := repo.Delete(ctx, tenantID, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("refuses cross-tenant deletes", func(t *testing.T) {
		patient := newTestPatient(t, tenantID, "Keep Me")
		require.NoError(t, repo.Save(ctx, patient))

		err := repo.Delete(ctx, uuid.New(), patient.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindByID(ctx, tenantID, patient.ID)
		assert.NoError(t, err)
	})
}
