package billing

import (
	"github.com/google/uuid"
	"github.com/physiomanager/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePaymentRecord = "PaymentRecord"

// Event type constants
const EventTypePaymentRecorded = "PaymentRecorded"

// PaymentRecordedEvent is published when money is collected
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	PatientID uuid.UUID       `json:"patient_id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"`
	PayType   PaymentType     `json:"pay_type"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(record *PaymentRecord) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePaymentRecord, record.ID, record.TenantID),
		PaymentID:       record.ID,
		PatientID:       record.PatientID,
		Amount:          record.Amount,
		Date:            record.Date.String(),
		PayType:         record.Type,
	}
}
