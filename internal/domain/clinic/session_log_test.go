package clinic

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionLog(t *testing.T) {
	tenantID := uuid.New()
	patient, err := NewPatient(tenantID, validPatientParams())
	require.NoError(t, err)

	t.Run("snapshots the session cost", func(t *testing.T) {
		log, err := NewSessionLog(tenantID, patient, Date("2024-01-07"), SessionAttended)

		require.NoError(t, err)
		assert.Equal(t, patient.ID, log.PatientID)
		assert.Equal(t, Date("2024-01-07"), log.Date)
		assert.Equal(t, SessionAttended, log.Status)
		assert.True(t, patient.SessionCost.Equal(log.Cost))
		assert.False(t, log.Paid)
		assert.True(t, log.IsAttended())
		assert.Len(t, log.GetDomainEvents(), 1)

		// A later fee change must not affect the snapshot
		patient.SessionCost = decimal.NewFromInt(999)
		assert.True(t, decimal.NewFromInt(150).Equal(log.Cost))
	})

	t.Run("records cancellations", func(t *testing.T) {
		log, err := NewSessionLog(tenantID, patient, Date("2024-01-09"), SessionCancelled)

		require.NoError(t, err)
		assert.False(t, log.IsAttended())
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := NewSessionLog(tenantID, patient, Date("2024-01-07"), SessionStatus("missed"))
		assert.Error(t, err)
	})

	t.Run("rejects empty date", func(t *testing.T) {
		_, err := NewSessionLog(tenantID, patient, Date(""), SessionAttended)
		assert.Error(t, err)
	})
}
