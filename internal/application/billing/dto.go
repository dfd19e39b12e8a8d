package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/physiomanager/backend/internal/domain/billing"
)

// RegisterPaymentRequest represents a manually registered payment.
// Type defaults to package_prepaid, the common case of collecting a
// package up front; date defaults to today.
type RegisterPaymentRequest struct {
	PatientID uuid.UUID       `json:"patient_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Date      string          `json:"date"`
	Type      string          `json:"type" binding:"omitempty,oneof=single_session package_prepaid package_postpaid"`
	Note      string          `json:"note" binding:"max=500"`
}

// PaymentListFilter represents filter options for listing payments
type PaymentListFilter struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	PatientID string `form:"patient_id" binding:"omitempty,uuid"`
	From      string `form:"from"`
	To        string `form:"to"`
}

// PaymentRecordResponse represents a payment record in API responses
type PaymentRecordResponse struct {
	ID        uuid.UUID       `json:"id"`
	PatientID uuid.UUID       `json:"patient_id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"`
	Type      string          `json:"type"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToPaymentRecordResponse converts a payment record to its API shape
func ToPaymentRecordResponse(r *billing.PaymentRecord) PaymentRecordResponse {
	return PaymentRecordResponse{
		ID:        r.ID,
		PatientID: r.PatientID,
		Amount:    r.Amount,
		Date:      r.Date.String(),
		Type:      string(r.Type),
		Note:      r.Note,
		CreatedAt: r.CreatedAt,
	}
}

// ToPaymentRecordResponses converts a slice of payment records
func ToPaymentRecordResponses(records []billing.PaymentRecord) []PaymentRecordResponse {
	responses := make([]PaymentRecordResponse, len(records))
	for i := range records {
		responses[i] = ToPaymentRecordResponse(&records[i])
	}
	return responses
}
