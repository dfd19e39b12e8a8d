package clinic

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/physiomanager/backend/internal/domain/clinic"
)

// =============================================================================
// Patient DTOs
// =============================================================================

// CreatePatientRequest represents a request to open a patient file
type CreatePatientRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=200"`
	Diagnosis     string          `json:"diagnosis" binding:"required,min=1,max=500"`
	Notes         string          `json:"notes" binding:"max=2000"`
	SessionCost   decimal.Decimal `json:"session_cost"`
	ScheduledDays []int           `json:"scheduled_days" binding:"required,min=1"`
	StartDate     string          `json:"start_date" binding:"required"`
	EndDate       string          `json:"end_date"`
	PaymentMethod string          `json:"payment_method" binding:"required,oneof=per_session prepaid postpaid"`
	PackageSize   int             `json:"package_size" binding:"min=0"`
}

// UpdatePatientRequest carries the full editable state of a patient.
// Edits replace the file as a whole, the way the practitioner sees it.
type UpdatePatientRequest struct {
	Name              string          `json:"name" binding:"required,min=1,max=200"`
	Diagnosis         string          `json:"diagnosis" binding:"required,min=1,max=500"`
	Notes             string          `json:"notes" binding:"max=2000"`
	SessionCost       decimal.Decimal `json:"session_cost"`
	ScheduledDays     []int           `json:"scheduled_days" binding:"required,min=1"`
	StartDate         string          `json:"start_date" binding:"required"`
	EndDate           string          `json:"end_date"`
	PaymentMethod     string          `json:"payment_method" binding:"required,oneof=per_session prepaid postpaid"`
	PackageSize       int             `json:"package_size" binding:"min=0"`
	SessionsCompleted int             `json:"sessions_completed" binding:"min=0"`
}

// PatientListFilter represents filter options for listing patients
type PatientListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status" binding:"omitempty,oneof=active completed"`
	Search   string `form:"search"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PatientResponse represents a patient in API responses
type PatientResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Diagnosis         string          `json:"diagnosis"`
	Notes             string          `json:"notes"`
	SessionCost       decimal.Decimal `json:"session_cost"`
	ScheduledDays     []int           `json:"scheduled_days"`
	DisplayDays       []string        `json:"display_days"`
	StartDate         string          `json:"start_date"`
	EndDate           *string         `json:"end_date,omitempty"`
	Status            string          `json:"status"`
	PaymentMethod     string          `json:"payment_method"`
	PackageSize       int             `json:"package_size"`
	SessionsCompleted int             `json:"sessions_completed"`
	PackagePosition   int             `json:"package_position"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToPatientResponse converts a patient aggregate to its API shape
func ToPatientResponse(p *clinic.Patient) PatientResponse {
	displayDays := make([]string, 0, p.ScheduledDays.Len())
	for _, w := range p.ScheduledDays.SortedForDisplay() {
		displayDays = append(displayDays, w.String())
	}

	resp := PatientResponse{
		ID:                p.ID,
		Name:              p.Name,
		Diagnosis:         p.Diagnosis,
		Notes:             p.Notes,
		SessionCost:       p.SessionCost,
		ScheduledDays:     p.ScheduledDays.Indices(),
		DisplayDays:       displayDays,
		StartDate:         p.StartDate.String(),
		Status:            string(p.Status),
		PaymentMethod:     string(p.PaymentMethod),
		PackageSize:       p.PackageSize,
		SessionsCompleted: p.SessionsCompleted,
		PackagePosition:   p.PackagePosition(),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if p.EndDate != nil {
		end := p.EndDate.String()
		resp.EndDate = &end
	}
	return resp
}

// ToPatientResponses converts a slice of patients
func ToPatientResponses(patients []clinic.Patient) []PatientResponse {
	responses := make([]PatientResponse, len(patients))
	for i := range patients {
		responses[i] = ToPatientResponse(&patients[i])
	}
	return responses
}

// =============================================================================
// Session log / check-in DTOs
// =============================================================================

// CheckInRequest represents a request to log a session for a patient.
// Date defaults to today, status to attended.
type CheckInRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	Date      string    `json:"date"`
	Status    string    `json:"status" binding:"omitempty,oneof=attended cancelled"`
}

// SessionLogResponse represents one logged session
type SessionLogResponse struct {
	ID        uuid.UUID       `json:"id"`
	PatientID uuid.UUID       `json:"patient_id"`
	Date      string          `json:"date"`
	Status    string          `json:"status"`
	Cost      decimal.Decimal `json:"cost"`
	Paid      bool            `json:"paid"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToSessionLogResponse converts a session log to its API shape
func ToSessionLogResponse(l *clinic.SessionLog) SessionLogResponse {
	return SessionLogResponse{
		ID:        l.ID,
		PatientID: l.PatientID,
		Date:      l.Date.String(),
		Status:    string(l.Status),
		Cost:      l.Cost,
		Paid:      l.Paid,
		CreatedAt: l.CreatedAt,
	}
}

// ToSessionLogResponses converts a slice of session logs
func ToSessionLogResponses(logs []clinic.SessionLog) []SessionLogResponse {
	responses := make([]SessionLogResponse, len(logs))
	for i := range logs {
		responses[i] = ToSessionLogResponse(&logs[i])
	}
	return responses
}

// AccruedPaymentInfo describes a payment the check-in engine generated
type AccruedPaymentInfo struct {
	ID     uuid.UUID       `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"`
	Date   string          `json:"date"`
}

// CheckInResponse reports everything one check-in did
type CheckInResponse struct {
	Log               SessionLogResponse  `json:"log"`
	Payment           *AccruedPaymentInfo `json:"payment,omitempty"`
	SessionsCompleted int                 `json:"sessions_completed"`
	PackagePosition   int                 `json:"package_position"`
}

// RosterEntry is one scheduled patient on the daily roster
type RosterEntry struct {
	Patient   PatientResponse     `json:"patient"`
	Logged    bool                `json:"logged"`
	LogStatus string              `json:"log_status,omitempty"`
	Log       *SessionLogResponse `json:"log,omitempty"`
}

// RosterResponse lists the patients scheduled on one date
type RosterResponse struct {
	Date    string        `json:"date"`
	Weekday string        `json:"weekday"`
	Entries []RosterEntry `json:"entries"`
}
