package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/physiomanager/backend/internal/domain/shared"
)

func TestGormTxRunner_Commit(t *testing.T) {
	db := setupTestDB(t)
	runner := NewGormTxRunner(db)
	patients := NewGormPatientRepository(db)
	logs := NewGormSessionLogRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	patient := newTestPatient(t, tenantID, "Tx Patient")

	err := runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := patients.Save(txCtx, patient); err != nil {
			return err
		}
		log := newTestSessionLog(t, tenantID, patient, clinic.MakeDate(2026, 3, 2), clinic.SessionAttended)
		return logs.Save(txCtx, log)
	})
	require.NoError(t, err)

	_, err = patients.FindByID(ctx, tenantID, patient.ID)
	assert.NoError(t, err)
}

func TestGormTxRunner_RollbackOnError(t *testing.T) {
	db := setupTestDB(t)
	runner := NewGormTxRunner(db)
	patients := NewGormPatientRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	patient := newTestPatient(t, tenantID, "Rolled Back")
	boom := errors.New("boom")

	err := runner.RunInTx(ctx, func(txCtx context.Context) error {
		if err := patients.Save(txCtx, patient); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = patients.FindByID(ctx, tenantID, patient.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormTxRunner_NestedCallsReuseTransaction(t *testing.T) {
	db := setupTestDB(t)
	runner := NewGormTxRunner(db)
	patients := NewGormPatientRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	patient := newTestPatient(t, tenantID, "Nested")
	boom := errors.New("boom")

	err := runner.RunInTx(ctx, func(outer context.Context) error {
		return runner.RunInTx(outer, func(inner context.Context) error {
			if err := patients.Save(inner, patient); err != nil {
				return err
			}
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	// The inner failure rolls back the single shared transaction.
	_, err = patients.FindByID(ctx, tenantID, patient.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
