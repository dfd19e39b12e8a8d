package clinic

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/physiomanager/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PatientStatus represents the treatment status of a patient
type PatientStatus string

const (
	PatientStatusActive    PatientStatus = "active"
	PatientStatusCompleted PatientStatus = "completed"
)

// PaymentMethod represents how a patient pays for sessions
type PaymentMethod string

const (
	PaymentPerSession PaymentMethod = "per_session" // paid at every attended session
	PaymentPrepaid    PaymentMethod = "prepaid"     // package collected up front via manual registration
	PaymentPostpaid   PaymentMethod = "postpaid"    // package collected when the cycle completes
)

// UsesPackage reports whether the method bills in fixed-size cycles
func (m PaymentMethod) UsesPackage() bool {
	return m == PaymentPrepaid || m == PaymentPostpaid
}

// Patient is the aggregate root of the clinic context: one person under
// treatment, their weekly recurrence pattern and their payment terms.
type Patient struct {
	shared.TenantAggregateRoot
	Name              string          `gorm:"type:varchar(200);not null"`
	Diagnosis         string          `gorm:"type:varchar(500);not null"`
	Notes             string          `gorm:"type:text"`
	SessionCost       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ScheduledDays     WeekdaySet      `gorm:"type:jsonb;not null"`
	StartDate         Date            `gorm:"type:varchar(10);not null;index"`
	EndDate           *Date           `gorm:"type:varchar(10)"` // inclusive; nil while treatment is open-ended
	Status            PatientStatus   `gorm:"type:varchar(20);not null;default:'active';index"`
	PaymentMethod     PaymentMethod   `gorm:"type:varchar(20);not null"`
	PackageSize       int             `gorm:"not null;default:0"` // sessions per billing cycle; meaningful only for package methods
	SessionsCompleted int             `gorm:"not null;default:0"` // monotonic attended-session counter; only RecordAttendance advances it
}

// TableName returns the table name for GORM
func (Patient) TableName() string {
	return "patients"
}

// NewPatientParams carries the fields required to open a patient file
type NewPatientParams struct {
	Name          string
	Diagnosis     string
	Notes         string
	SessionCost   decimal.Decimal
	ScheduledDays []int
	StartDate     string
	EndDate       string // optional
	PaymentMethod PaymentMethod
	PackageSize   int
}

// NewPatient creates a new active patient, validating every invariant
// before anything is persisted.
func NewPatient(tenantID uuid.UUID, params NewPatientParams) (*Patient, error) {
	if err := validatePatientName(params.Name); err != nil {
		return nil, err
	}
	if err := validateDiagnosis(params.Diagnosis); err != nil {
		return nil, err
	}
	if params.SessionCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SESSION_COST", "Session cost cannot be negative")
	}
	days, err := NewWeekdaySet(params.ScheduledDays)
	if err != nil {
		return nil, err
	}
	startDate, err := NewDate(params.StartDate)
	if err != nil {
		return nil, err
	}
	var endDate *Date
	if params.EndDate != "" {
		d, err := NewDate(params.EndDate)
		if err != nil {
			return nil, err
		}
		if d.Before(startDate) {
			return nil, shared.NewDomainError("INVALID_DATE_RANGE", "End date cannot be earlier than start date")
		}
		endDate = &d
	}
	if err := validatePaymentTerms(params.PaymentMethod, params.PackageSize); err != nil {
		return nil, err
	}

	packageSize := params.PackageSize
	if !params.PaymentMethod.UsesPackage() {
		packageSize = 0
	}

	patient := &Patient{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                params.Name,
		Diagnosis:           params.Diagnosis,
		Notes:               params.Notes,
		SessionCost:         params.SessionCost,
		ScheduledDays:       days,
		StartDate:           startDate,
		EndDate:             endDate,
		Status:              PatientStatusActive,
		PaymentMethod:       params.PaymentMethod,
		PackageSize:         packageSize,
	}

	patient.AddDomainEvent(NewPatientCreatedEvent(patient))

	return patient, nil
}

// UpdatePatientParams carries the editable fields of a patient file.
// SessionsCompleted may be corrected here by a manual edit; the engine
// itself never decrements it.
type UpdatePatientParams struct {
	Name              string
	Diagnosis         string
	Notes             string
	SessionCost       decimal.Decimal
	ScheduledDays     []int
	StartDate         string
	EndDate           string // empty clears the end date
	PaymentMethod     PaymentMethod
	PackageSize       int
	SessionsCompleted int
}

// Update replaces the patient's editable fields after validation
func (p *Patient) Update(params UpdatePatientParams) error {
	if err := validatePatientName(params.Name); err != nil {
		return err
	}
	if err := validateDiagnosis(params.Diagnosis); err != nil {
		return err
	}
	if params.SessionCost.IsNegative() {
		return shared.NewDomainError("INVALID_SESSION_COST", "Session cost cannot be negative")
	}
	days, err := NewWeekdaySet(params.ScheduledDays)
	if err != nil {
		return err
	}
	startDate, err := NewDate(params.StartDate)
	if err != nil {
		return err
	}
	var endDate *Date
	if params.EndDate != "" {
		d, err := NewDate(params.EndDate)
		if err != nil {
			return err
		}
		if d.Before(startDate) {
			return shared.NewDomainError("INVALID_DATE_RANGE", "End date cannot be earlier than start date")
		}
		endDate = &d
	}
	if err := validatePaymentTerms(params.PaymentMethod, params.PackageSize); err != nil {
		return err
	}
	if params.SessionsCompleted < 0 {
		return shared.NewDomainError("INVALID_COUNTER", "Sessions completed cannot be negative")
	}

	p.Name = params.Name
	p.Diagnosis = params.Diagnosis
	p.Notes = params.Notes
	p.SessionCost = params.SessionCost
	p.ScheduledDays = days
	p.StartDate = startDate
	p.EndDate = endDate
	p.PaymentMethod = params.PaymentMethod
	if params.PaymentMethod.UsesPackage() {
		p.PackageSize = params.PackageSize
	} else {
		p.PackageSize = 0
	}
	p.SessionsCompleted = params.SessionsCompleted
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPatientUpdatedEvent(p))

	return nil
}

// Complete marks the treatment finished as of the given date
func (p *Patient) Complete(today Date) error {
	if p.Status == PatientStatusCompleted {
		return shared.NewDomainError("ALREADY_COMPLETED", "Patient treatment is already completed")
	}

	p.Status = PatientStatusCompleted
	p.EndDate = &today
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPatientCompletedEvent(p))

	return nil
}

// Reactivate reopens a completed treatment and clears the end date
func (p *Patient) Reactivate() error {
	if p.Status == PatientStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Patient is already active")
	}

	p.Status = PatientStatusActive
	p.EndDate = nil
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPatientReactivatedEvent(p))

	return nil
}

// RecordAttendance advances the attended-session counter by one and
// returns the new count. This is the only engine-driven mutation.
func (p *Patient) RecordAttendance() int {
	p.SessionsCompleted++
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPatientAttendanceRecordedEvent(p))

	return p.SessionsCompleted
}

// IsActive reports whether the patient still generates scheduled sessions
func (p *Patient) IsActive() bool {
	return p.Status == PatientStatusActive
}

// IsExpired reports whether an active patient's end date has passed
func (p *Patient) IsExpired(today Date) bool {
	return p.Status == PatientStatusActive && p.EndDate != nil && p.EndDate.Before(today)
}

// PackagePosition returns the patient's position inside the current
// billing cycle (0..PackageSize-1). Zero for non-package methods.
func (p *Patient) PackagePosition() int {
	if !p.PaymentMethod.UsesPackage() || p.PackageSize < 1 {
		return 0
	}
	return p.SessionsCompleted % p.PackageSize
}

// WeeklyProjectedIncome is the theoretical income of one full week of
// attendance: session cost times scheduled days per week.
func (p *Patient) WeeklyProjectedIncome() decimal.Decimal {
	return p.SessionCost.Mul(decimal.NewFromInt(int64(p.ScheduledDays.Len())))
}

func validatePatientName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Patient name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Patient name cannot exceed 200 characters")
	}
	return nil
}

func validateDiagnosis(diagnosis string) error {
	if diagnosis == "" {
		return shared.NewDomainError("INVALID_DIAGNOSIS", "Diagnosis cannot be empty")
	}
	if len(diagnosis) > 500 {
		return shared.NewDomainError("INVALID_DIAGNOSIS", "Diagnosis cannot exceed 500 characters")
	}
	return nil
}

func validatePaymentTerms(method PaymentMethod, packageSize int) error {
	switch method {
	case PaymentPerSession:
		return nil
	case PaymentPrepaid, PaymentPostpaid:
		if packageSize < 1 {
			return shared.NewDomainError("INVALID_PACKAGE_SIZE",
				fmt.Sprintf("Payment method %q requires a package size of at least 1", method))
		}
		return nil
	default:
		return shared.NewDomainError("INVALID_PAYMENT_METHOD",
			"Payment method must be 'per_session', 'prepaid' or 'postpaid'")
	}
}
