package billing

import (
	"github.com/google/uuid"
	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/physiomanager/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentType classifies how a collected amount relates to sessions
type PaymentType string

const (
	// PaymentSingleSession is an immediate payment for one attended session
	PaymentSingleSession PaymentType = "single_session"
	// PaymentPackagePrepaid is a package collected up front, before the
	// sessions it covers are rendered
	PaymentPackagePrepaid PaymentType = "package_prepaid"
	// PaymentPackagePostpaid is a package collected when its cycle completes
	PaymentPackagePostpaid PaymentType = "package_postpaid"
)

// Valid reports whether the payment type is known
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentSingleSession, PaymentPackagePrepaid, PaymentPackagePostpaid:
		return true
	default:
		return false
	}
}

// PaymentRecord is one money-collection event. Records are append-only
// and immutable; corrections happen by registering new records, never
// by editing history. PatientID is a weak reference.
type PaymentRecord struct {
	shared.TenantAggregateRoot
	PatientID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Date      clinic.Date     `gorm:"type:varchar(10);not null;index"`
	Type      PaymentType     `gorm:"type:varchar(20);not null"`
	Note      string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PaymentRecord) TableName() string {
	return "payment_records"
}

// NewPaymentRecord creates a payment record after validating the amount
// is strictly positive and the type is known.
func NewPaymentRecord(tenantID, patientID uuid.UUID, amount decimal.Decimal, date clinic.Date, paymentType PaymentType, note string) (*PaymentRecord, error) {
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Payment date is required")
	}
	if !paymentType.Valid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE",
			"Payment type must be 'single_session', 'package_prepaid' or 'package_postpaid'")
	}
	if len(note) > 500 {
		return nil, shared.NewDomainError("INVALID_NOTE", "Note cannot exceed 500 characters")
	}

	record := &PaymentRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PatientID:           patientID,
		Amount:              amount,
		Date:                date,
		Type:                paymentType,
		Note:                note,
	}

	record.AddDomainEvent(NewPaymentRecordedEvent(record))

	return record, nil
}

// IsPrepaidPackage reports whether the record is an up-front package
// collection; these are optionally excluded from operating income.
func (r *PaymentRecord) IsPrepaidPackage() bool {
	return r.Type == PaymentPackagePrepaid
}
