package clinic

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/physiomanager/backend/internal/domain/billing"
	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/physiomanager/backend/internal/domain/shared"
)

// CheckInService records attended sessions and accrues the payments
// they imply. One check-in is one storage transaction: the session log,
// the attendance counter and any generated payment commit together or
// not at all.
type CheckInService struct {
	patientRepo    clinic.PatientRepository
	sessionRepo    clinic.SessionLogRepository
	paymentRepo    billing.PaymentRecordRepository
	tx             shared.TxRunner
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCheckInService creates a new CheckInService
func NewCheckInService(
	patientRepo clinic.PatientRepository,
	sessionRepo clinic.SessionLogRepository,
	paymentRepo billing.PaymentRecordRepository,
	tx shared.TxRunner,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *CheckInService {
	return &CheckInService{
		patientRepo:    patientRepo,
		sessionRepo:    sessionRepo,
		paymentRepo:    paymentRepo,
		tx:             tx,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// CheckIn logs a session for a patient on a date. At most one log per
// patient per date: a second check-in on the same date is rejected with
// ALREADY_LOGGED. For attended sessions the attendance counter
// advances and the patient's payment method decides whether a payment
// accrues:
//
//   - per_session: one single_session payment of the session cost
//   - postpaid:    one package payment of cost * package size whenever
//     the counter lands on a package boundary
//   - prepaid:     nothing; the package was paid up front
func (s *CheckInService) CheckIn(ctx context.Context, tenantID uuid.UUID, req CheckInRequest) (*CheckInResponse, error) {
	date, err := s.resolveDate(req.Date)
	if err != nil {
		return nil, err
	}
	status := clinic.SessionStatus(req.Status)
	if req.Status == "" {
		status = clinic.SessionAttended
	}

	patient, err := s.patientRepo.FindByID(ctx, tenantID, req.PatientID)
	if err != nil {
		return nil, err
	}

	exists, err := s.sessionRepo.ExistsForDate(ctx, tenantID, patient.ID, date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrAlreadyLogged
	}

	log, err := clinic.NewSessionLog(tenantID, patient, date, status)
	if err != nil {
		return nil, err
	}

	var payment *billing.PaymentRecord
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if log.IsAttended() {
			completed := patient.RecordAttendance()

			payment, err = s.accrue(tenantID, patient, date, completed)
			if err != nil {
				return err
			}
			// The log stays unpaid; the payments ledger is the
			// source of truth for money owed and received
			if payment != nil {
				if err := s.paymentRepo.Save(txCtx, payment); err != nil {
					return err
				}
			}

			if err := s.patientRepo.Save(txCtx, patient); err != nil {
				return err
			}
		}
		return s.sessionRepo.Save(txCtx, log)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, log, patient, payment)

	s.logger.Info("Session checked in",
		zap.String("patient_id", patient.ID.String()),
		zap.String("date", date.String()),
		zap.String("status", string(status)),
		zap.Bool("payment_accrued", payment != nil))

	response := &CheckInResponse{
		Log:               ToSessionLogResponse(log),
		SessionsCompleted: patient.SessionsCompleted,
		PackagePosition:   patient.PackagePosition(),
	}
	if payment != nil {
		response.Payment = &AccruedPaymentInfo{
			ID:     payment.ID,
			Amount: payment.Amount,
			Type:   string(payment.Type),
			Date:   payment.Date.String(),
		}
	}
	return response, nil
}

// Roster lists the active patients scheduled on a date, with the log
// already recorded for each where one exists.
func (s *CheckInService) Roster(ctx context.Context, tenantID uuid.UUID, dateStr string) (*RosterResponse, error) {
	date, err := s.resolveDate(dateStr)
	if err != nil {
		return nil, err
	}

	patients, err := s.patientRepo.FindActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	logs, err := s.sessionRepo.FindByDate(ctx, tenantID, date)
	if err != nil {
		return nil, err
	}
	logByPatient := make(map[uuid.UUID]*clinic.SessionLog, len(logs))
	for i := range logs {
		// The first log for a patient is authoritative
		if _, ok := logByPatient[logs[i].PatientID]; !ok {
			logByPatient[logs[i].PatientID] = &logs[i]
		}
	}

	response := &RosterResponse{
		Date:    date.String(),
		Weekday: date.Weekday().String(),
		Entries: make([]RosterEntry, 0),
	}
	for i := range patients {
		p := &patients[i]
		if !clinic.IsScheduled(p, date) {
			continue
		}
		entry := RosterEntry{Patient: ToPatientResponse(p)}
		if log, ok := logByPatient[p.ID]; ok {
			entry.Logged = true
			entry.LogStatus = string(log.Status)
			logResp := ToSessionLogResponse(log)
			entry.Log = &logResp
		}
		response.Entries = append(response.Entries, entry)
	}
	return response, nil
}

// accrue builds the payment implied by an attended session, or nil
// when none accrues. Zero-cost patients never generate payments.
func (s *CheckInService) accrue(tenantID uuid.UUID, patient *clinic.Patient, date clinic.Date, completed int) (*billing.PaymentRecord, error) {
	if !patient.SessionCost.IsPositive() {
		return nil, nil
	}

	switch patient.PaymentMethod {
	case clinic.PaymentPerSession:
		return billing.NewPaymentRecord(tenantID, patient.ID, patient.SessionCost, date, billing.PaymentSingleSession, "")
	case clinic.PaymentPostpaid:
		if patient.PackageSize > 0 && completed%patient.PackageSize == 0 {
			amount := patient.SessionCost.Mul(decimal.NewFromInt(int64(patient.PackageSize)))
			return billing.NewPaymentRecord(tenantID, patient.ID, amount, date, billing.PaymentPackagePostpaid, "")
		}
		return nil, nil
	case clinic.PaymentPrepaid:
		return nil, nil
	default:
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
}

func (s *CheckInService) resolveDate(dateStr string) (clinic.Date, error) {
	if dateStr == "" {
		return clinic.Today(), nil
	}
	return clinic.NewDate(dateStr)
}

func (s *CheckInService) publishDomainEvents(ctx context.Context, log *clinic.SessionLog, patient *clinic.Patient, payment *billing.PaymentRecord) {
	if s.eventPublisher == nil {
		return
	}
	events := log.GetDomainEvents()
	events = append(events, patient.GetDomainEvents()...)
	if payment != nil {
		events = append(events, payment.GetDomainEvents()...)
	}
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	log.ClearDomainEvents()
	patient.ClearDomainEvents()
	if payment != nil {
		payment.ClearDomainEvents()
	}
}
