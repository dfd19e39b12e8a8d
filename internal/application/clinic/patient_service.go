package clinic

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/physiomanager/backend/internal/domain/shared"
)

// PatientService handles the patient file lifecycle
type PatientService struct {
	patientRepo    clinic.PatientRepository
	sessionRepo    clinic.SessionLogRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPatientService creates a new PatientService
func NewPatientService(
	patientRepo clinic.PatientRepository,
	sessionRepo clinic.SessionLogRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *PatientService {
	return &PatientService{
		patientRepo:    patientRepo,
		sessionRepo:    sessionRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create opens a new patient file
func (s *PatientService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePatientRequest) (*PatientResponse, error) {
	patient, err := clinic.NewPatient(tenantID, clinic.NewPatientParams{
		Name:          req.Name,
		Diagnosis:     req.Diagnosis,
		Notes:         req.Notes,
		SessionCost:   req.SessionCost,
		ScheduledDays: req.ScheduledDays,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		PaymentMethod: clinic.PaymentMethod(req.PaymentMethod),
		PackageSize:   req.PackageSize,
	})
	if err != nil {
		return nil, err
	}

	if err := s.patientRepo.Save(ctx, patient); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, patient)

	s.logger.Info("Patient created",
		zap.String("patient_id", patient.ID.String()),
		zap.String("payment_method", string(patient.PaymentMethod)))

	response := ToPatientResponse(patient)
	return &response, nil
}

// GetByID retrieves a patient by ID
func (s *PatientService) GetByID(ctx context.Context, tenantID, patientID uuid.UUID) (*PatientResponse, error) {
	patient, err := s.patientRepo.FindByID(ctx, tenantID, patientID)
	if err != nil {
		return nil, err
	}

	response := ToPatientResponse(patient)
	return &response, nil
}

// List retrieves patients with filtering and pagination
func (s *PatientService) List(ctx context.Context, tenantID uuid.UUID, filter PatientListFilter) ([]PatientResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search

	var (
		patients []clinic.Patient
		err      error
	)
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
		patients, err = s.patientRepo.FindByStatus(ctx, tenantID, clinic.PatientStatus(filter.Status), domainFilter)
	} else {
		patients, err = s.patientRepo.FindAll(ctx, tenantID, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.patientRepo.Count(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToPatientResponses(patients), total, nil
}

// Update replaces a patient's editable fields
func (s *PatientService) Update(ctx context.Context, tenantID, patientID uuid.UUID, req UpdatePatientRequest) (*PatientResponse, error) {
	patient, err := s.patientRepo.FindByID(ctx, tenantID, patientID)
	if err != nil {
		return nil, err
	}

	err = patient.Update(clinic.UpdatePatientParams{
		Name:              req.Name,
		Diagnosis:         req.Diagnosis,
		Notes:             req.Notes,
		SessionCost:       req.SessionCost,
		ScheduledDays:     req.ScheduledDays,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		PaymentMethod:     clinic.PaymentMethod(req.PaymentMethod),
		PackageSize:       req.PackageSize,
		SessionsCompleted: req.SessionsCompleted,
	})
	if err != nil {
		return nil, err
	}

	if err := s.patientRepo.Save(ctx, patient); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, patient)

	response := ToPatientResponse(patient)
	return &response, nil
}

// Complete closes a patient's treatment as of today
func (s *PatientService) Complete(ctx context.Context, tenantID, patientID uuid.UUID) (*PatientResponse, error) {
	patient, err := s.patientRepo.FindByID(ctx, tenantID, patientID)
	if err != nil {
		return nil, err
	}

	if err := patient.Complete(clinic.Today()); err != nil {
		return nil, err
	}

	if err := s.patientRepo.Save(ctx, patient); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, patient)

	s.logger.Info("Patient completed", zap.String("patient_id", patient.ID.String()))

	response := ToPatientResponse(patient)
	return &response, nil
}

// Reactivate reopens a completed patient's treatment
func (s *PatientService) Reactivate(ctx context.Context, tenantID, patientID uuid.UUID) (*PatientResponse, error) {
	patient, err := s.patientRepo.FindByID(ctx, tenantID, patientID)
	if err != nil {
		return nil, err
	}

	if err := patient.Reactivate(); err != nil {
		return nil, err
	}

	if err := s.patientRepo.Save(ctx, patient); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, patient)

	response := ToPatientResponse(patient)
	return &response, nil
}

// Delete removes a patient file. Session logs and payment records stay
// behind as historical rows.
func (s *PatientService) Delete(ctx context.Context, tenantID, patientID uuid.UUID) error {
	patient, err := s.patientRepo.FindByID(ctx, tenantID, patientID)
	if err != nil {
		return err
	}

	if err := s.patientRepo.Delete(ctx, tenantID, patientID); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, clinic.NewPatientDeletedEvent(patient))
	}

	s.logger.Info("Patient deleted", zap.String("patient_id", patientID.String()))
	return nil
}

// History returns a patient's session logs, newest first
func (s *PatientService) History(ctx context.Context, tenantID, patientID uuid.UUID, filter shared.Filter) ([]SessionLogResponse, error) {
	if _, err := s.patientRepo.FindByID(ctx, tenantID, patientID); err != nil {
		return nil, err
	}

	logs, err := s.sessionRepo.FindByPatient(ctx, tenantID, patientID, filter)
	if err != nil {
		return nil, err
	}

	return ToSessionLogResponses(logs), nil
}

func (s *PatientService) publishDomainEvents(ctx context.Context, patient *clinic.Patient) {
	if s.eventPublisher == nil {
		return
	}
	events := patient.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	patient.ClearDomainEvents()
}
