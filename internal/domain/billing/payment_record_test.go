package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaymentRecord(t *testing.T) {
	tenantID := uuid.New()
	patientID := uuid.New()
	date := clinic.Date("2024-01-07")

	t.Run("creates record", func(t *testing.T) {
		record, err := NewPaymentRecord(tenantID, patientID, decimal.NewFromInt(100), date, PaymentSingleSession, "")

		require.NoError(t, err)
		assert.Equal(t, tenantID, record.TenantID)
		assert.Equal(t, patientID, record.PatientID)
		assert.True(t, decimal.NewFromInt(100).Equal(record.Amount))
		assert.Equal(t, PaymentSingleSession, record.Type)
		assert.Len(t, record.GetDomainEvents(), 1)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := NewPaymentRecord(tenantID, patientID, decimal.Zero, date, PaymentSingleSession, "")
		assert.Error(t, err)

		_, err = NewPaymentRecord(tenantID, patientID, decimal.NewFromInt(-5), date, PaymentSingleSession, "")
		assert.Error(t, err)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewPaymentRecord(tenantID, patientID, decimal.NewFromInt(100), date, PaymentType("refund"), "")
		assert.Error(t, err)
	})

	t.Run("rejects empty date", func(t *testing.T) {
		_, err := NewPaymentRecord(tenantID, patientID, decimal.NewFromInt(100), clinic.Date(""), PaymentSingleSession, "")
		assert.Error(t, err)
	})

	t.Run("flags prepaid packages", func(t *testing.T) {
		record, err := NewPaymentRecord(tenantID, patientID, decimal.NewFromInt(1200), date, PaymentPackagePrepaid, "12-session package")
		require.NoError(t, err)
		assert.True(t, record.IsPrepaidPackage())
		assert.Equal(t, "12-session package", record.Note)
	})
}
