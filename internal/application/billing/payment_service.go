package billing

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/physiomanager/backend/internal/domain/billing"
	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/physiomanager/backend/internal/domain/shared"
)

// PaymentService handles manual payment registration and the payment
// ledger queries. Engine-accrued payments are written by the check-in
// service; this service covers everything the practitioner records by
// hand, prepaid packages above all.
type PaymentService struct {
	paymentRepo    billing.PaymentRecordRepository
	patientRepo    clinic.PatientRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo billing.PaymentRecordRepository,
	patientRepo clinic.PatientRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		patientRepo:    patientRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Register records a manual payment against a patient
func (s *PaymentService) Register(ctx context.Context, tenantID uuid.UUID, req RegisterPaymentRequest) (*PaymentRecordResponse, error) {
	patient, err := s.patientRepo.FindByID(ctx, tenantID, req.PatientID)
	if err != nil {
		return nil, err
	}

	date := clinic.Today()
	if req.Date != "" {
		date, err = clinic.NewDate(req.Date)
		if err != nil {
			return nil, err
		}
	}

	paymentType := billing.PaymentPackagePrepaid
	if req.Type != "" {
		paymentType = billing.PaymentType(req.Type)
	}

	record, err := billing.NewPaymentRecord(tenantID, patient.ID, req.Amount, date, paymentType, req.Note)
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Save(ctx, record); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		events := record.GetDomainEvents()
		if len(events) > 0 {
			_ = s.eventPublisher.Publish(ctx, events...)
			record.ClearDomainEvents()
		}
	}

	s.logger.Info("Payment registered",
		zap.String("patient_id", patient.ID.String()),
		zap.String("type", string(paymentType)),
		zap.String("amount", record.Amount.String()))

	response := ToPaymentRecordResponse(record)
	return &response, nil
}

// GetByID retrieves a payment record by ID
func (s *PaymentService) GetByID(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentRecordResponse, error) {
	record, err := s.paymentRepo.FindByID(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}

	response := ToPaymentRecordResponse(record)
	return &response, nil
}

// List retrieves payment records, optionally narrowed to one patient
// or one date window.
func (s *PaymentService) List(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) ([]PaymentRecordResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	if filter.From != "" || filter.To != "" {
		records, err := s.listByRange(ctx, tenantID, filter)
		if err != nil {
			return nil, 0, err
		}
		return records, int64(len(records)), nil
	}

	if filter.PatientID != "" {
		patientID, err := uuid.Parse(filter.PatientID)
		if err != nil {
			return nil, 0, shared.NewDomainError("INVALID_INPUT", "Invalid patient id")
		}
		records, err := s.paymentRepo.FindByPatient(ctx, tenantID, patientID, domainFilter)
		if err != nil {
			return nil, 0, err
		}
		return ToPaymentRecordResponses(records), int64(len(records)), nil
	}

	records, err := s.paymentRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.paymentRepo.Count(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToPaymentRecordResponses(records), total, nil
}

func (s *PaymentService) listByRange(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) ([]PaymentRecordResponse, error) {
	if filter.From == "" || filter.To == "" {
		return nil, shared.NewDomainError("INVALID_RANGE", "Both from and to are required for a date range")
	}
	from, err := clinic.NewDate(filter.From)
	if err != nil {
		return nil, err
	}
	to, err := clinic.NewDate(filter.To)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, shared.NewDomainError("INVALID_RANGE", "Range end precedes its start")
	}

	records, err := s.paymentRepo.FindByDateRange(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	if filter.PatientID != "" {
		patientID, err := uuid.Parse(filter.PatientID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid patient id")
		}
		filtered := records[:0]
		for _, r := range records {
			if r.PatientID == patientID {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	return ToPaymentRecordResponses(records), nil
}
