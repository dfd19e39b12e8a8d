package clinic

import (
	"github.com/google/uuid"
	"github.com/physiomanager/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypePatient    = "Patient"
	AggregateTypeSessionLog = "SessionLog"
)

// Event type constants
const (
	EventTypePatientCreated     = "PatientCreated"
	EventTypePatientUpdated     = "PatientUpdated"
	EventTypePatientCompleted   = "PatientCompleted"
	EventTypePatientReactivated = "PatientReactivated"
	EventTypePatientAttendance  = "PatientAttendanceRecorded"
	EventTypePatientDeleted     = "PatientDeleted"
	EventTypeSessionLogged      = "SessionLogged"
)

// PatientCreatedEvent is published when a new patient file is opened
type PatientCreatedEvent struct {
	shared.BaseDomainEvent
	PatientID     uuid.UUID     `json:"patient_id"`
	Name          string        `json:"name"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// NewPatientCreatedEvent creates a new PatientCreatedEvent
func NewPatientCreatedEvent(patient *Patient) *PatientCreatedEvent {
	return &PatientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePatientCreated, AggregateTypePatient, patient.ID, patient.TenantID),
		PatientID:       patient.ID,
		Name:            patient.Name,
		PaymentMethod:   patient.PaymentMethod,
	}
}

// PatientUpdatedEvent is published when a patient file is edited
type PatientUpdatedEvent struct {
	shared.BaseDomainEvent
	PatientID uuid.UUID `json:"patient_id"`
	Name      string    `json:"name"`
}

// NewPatientUpdatedEvent creates a new PatientUpdatedEvent
func NewPatientUpdatedEvent(patient *Patient) *PatientUpdatedEvent {
	return &PatientUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePatientUpdated, AggregateTypePatient, patient.ID, patient.TenantID),
		PatientID:       patient.ID,
		Name:            patient.Name,
	}
}

// PatientCompletedEvent is published when a treatment is closed
type PatientCompletedEvent struct {
	shared.BaseDomainEvent
	PatientID uuid.UUID `json:"patient_id"`
	EndDate   string    `json:"end_date"`
}

// NewPatientCompletedEvent creates a new PatientCompletedEvent
func NewPatientCompletedEvent(patient *Patient) *PatientCompletedEvent {
	endDate := ""
	if patient.EndDate != nil {
		endDate = patient.EndDate.String()
	}
	return &PatientCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePatientCompleted, AggregateTypePatient, patient.ID, patient.TenantID),
		PatientID:       patient.ID,
		EndDate:         endDate,
	}
}

// PatientReactivatedEvent is published when a completed treatment reopens
type PatientReactivatedEvent struct {
	shared.BaseDomainEvent
	PatientID uuid.UUID `json:"patient_id"`
}

// NewPatientReactivatedEvent creates a new PatientReactivatedEvent
func NewPatientReactivatedEvent(patient *Patient) *PatientReactivatedEvent {
	return &PatientReactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePatientReactivated, AggregateTypePatient, patient.ID, patient.TenantID),
		PatientID:       patient.ID,
	}
}

// PatientAttendanceRecordedEvent is published when the attended-session
// counter advances
type PatientAttendanceRecordedEvent struct {
	shared.BaseDomainEvent
	PatientID         uuid.UUID `json:"patient_id"`
	SessionsCompleted int       `json:"sessions_completed"`
}

// NewPatientAttendanceRecordedEvent creates a new PatientAttendanceRecordedEvent
func NewPatientAttendanceRecordedEvent(patient *Patient) *PatientAttendanceRecordedEvent {
	return &PatientAttendanceRecordedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypePatientAttendance, AggregateTypePatient, patient.ID, patient.TenantID),
		PatientID:         patient.ID,
		SessionsCompleted: patient.SessionsCompleted,
	}
}

// PatientDeletedEvent is published when a patient file is removed
type PatientDeletedEvent struct {
	shared.BaseDomainEvent
	PatientID uuid.UUID `json:"patient_id"`
	Name      string    `json:"name"`
}

// NewPatientDeletedEvent creates a new PatientDeletedEvent
func NewPatientDeletedEvent(patient *Patient) *PatientDeletedEvent {
	return &PatientDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePatientDeleted, AggregateTypePatient, patient.ID, patient.TenantID),
		PatientID:       patient.ID,
		Name:            patient.Name,
	}
}

// SessionLoggedEvent is published when a check-in writes a session log
type SessionLoggedEvent struct {
	shared.BaseDomainEvent
	SessionLogID uuid.UUID     `json:"session_log_id"`
	PatientID    uuid.UUID     `json:"patient_id"`
	Date         string        `json:"date"`
	Status       SessionStatus `json:"status"`
}

// NewSessionLoggedEvent creates a new SessionLoggedEvent
func NewSessionLoggedEvent(log *SessionLog) *SessionLoggedEvent {
	return &SessionLoggedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionLogged, AggregateTypeSessionLog, log.ID, log.TenantID),
		SessionLogID:    log.ID,
		PatientID:       log.PatientID,
		Date:            log.Date.String(),
		Status:          log.Status,
	}
}
