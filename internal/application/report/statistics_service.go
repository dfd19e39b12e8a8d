package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/physiomanager/backend/internal/domain/shared"
)

// topPatientCount is how many patients the statistics view ranks
const topPatientCount = 5

// StatisticsService builds the month statistics and the per-patient
// monthly report. Both restrict the calculator's day walk to one
// calendar month and bucket the results differently.
type StatisticsService struct {
	patientRepo clinic.PatientRepository
	logger      *zap.Logger
}

// NewStatisticsService creates a new StatisticsService
func NewStatisticsService(patientRepo clinic.PatientRepository, logger *zap.Logger) *StatisticsService {
	return &StatisticsService{
		patientRepo: patientRepo,
		logger:      logger,
	}
}

// MonthStatistics aggregates one calendar month: session count and
// projected income, a per-weekday histogram in display order, the top
// patients by income and the diagnosis distribution over patients whose
// treatment window overlaps the month.
func (s *StatisticsService) MonthStatistics(ctx context.Context, tenantID uuid.UUID, year int, month time.Month) (*MonthStatistics, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}
	from, to := clinic.MonthBounds(year, month)

	patients, err := s.loadPatients(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	stats := &MonthStatistics{
		Year:                  year,
		Month:                 int(month),
		TotalIncome:           decimal.Zero,
		TopPatients:           make([]PatientShare, 0),
		DiagnosisDistribution: make([]DiagnosisCount, 0),
	}

	var byWeekday [7]int
	shareIndex := make(map[uuid.UUID]int)
	shares := make([]PatientShare, 0)

	err = walkScheduledDays(patients, from, to, nil, func(day clinic.Date, p *clinic.Patient) {
		stats.TotalSessions++
		stats.TotalIncome = stats.TotalIncome.Add(p.SessionCost)
		byWeekday[day.Weekday()]++

		si, ok := shareIndex[p.ID]
		if !ok {
			si = len(shares)
			shareIndex[p.ID] = si
			shares = append(shares, PatientShare{PatientID: p.ID, Name: p.Name, Income: decimal.Zero})
		}
		shares[si].Sessions++
		shares[si].Income = shares[si].Income.Add(p.SessionCost)
	})
	if err != nil {
		return nil, err
	}

	// Histogram rows follow the presentation week, Saturday first
	stats.WeekdayHistogram = make([]WeekdayCount, 0, 7)
	for _, w := range clinic.DisplayWeekOrder {
		stats.WeekdayHistogram = append(stats.WeekdayHistogram, WeekdayCount{
			Weekday:  w.String(),
			Sessions: byWeekday[w],
		})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Income.GreaterThan(shares[j].Income)
	})
	if len(shares) > topPatientCount {
		shares = shares[:topPatientCount]
	}
	stats.TopPatients = shares

	// A patient completed mid-month still belongs to the month's
	// distribution; one starting after it does not.
	diagnosisIndex := make(map[string]int)
	for i := range patients {
		p := &patients[i]
		if !overlapsRange(p, from, to) {
			continue
		}
		stats.ActiveInMonth++
		diagnosis := p.Diagnosis
		if diagnosis == "" {
			diagnosis = "unspecified"
		}
		di, ok := diagnosisIndex[diagnosis]
		if !ok {
			di = len(stats.DiagnosisDistribution)
			diagnosisIndex[diagnosis] = di
			stats.DiagnosisDistribution = append(stats.DiagnosisDistribution, DiagnosisCount{Diagnosis: diagnosis})
		}
		stats.DiagnosisDistribution[di].Patients++
	}

	return stats, nil
}

// overlapsRange reports whether the patient's treatment window touches
// the inclusive [from, to] range. A nil end date means still open.
func overlapsRange(p *clinic.Patient, from, to clinic.Date) bool {
	if p.StartDate.After(to) {
		return false
	}
	return p.EndDate == nil || !p.EndDate.Before(from)
}

// MonthReport lists every patient whose treatment window overlaps the
// month, one row each, ordered by treatment start date (newest first by
// default). Patients whose end date falls mid-month are counted only up
// to it; an overlapping patient with no scheduled day keeps a zero row.
func (s *StatisticsService) MonthReport(ctx context.Context, tenantID uuid.UUID, year int, month time.Month, order string) (*MonthReport, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}
	switch order {
	case "", "asc", "desc":
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", "Order must be asc or desc")
	}
	from, to := clinic.MonthBounds(year, month)

	patients, err := s.loadPatients(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	report := &MonthReport{
		Year:        year,
		Month:       int(month),
		Order:       order,
		TotalIncome: decimal.Zero,
		Rows:        make([]MonthReportRow, 0),
	}
	if report.Order == "" {
		report.Order = "desc"
	}

	rowIndex := make(map[uuid.UUID]int)
	for i := range patients {
		p := &patients[i]
		if !overlapsRange(p, from, to) {
			continue
		}
		row := MonthReportRow{
			PatientID:     p.ID,
			Name:          p.Name,
			Diagnosis:     p.Diagnosis,
			StartDate:     p.StartDate.String(),
			PaymentMethod: string(p.PaymentMethod),
			Income:        decimal.Zero,
		}
		if p.EndDate != nil {
			end := p.EndDate.String()
			row.EndDate = &end
		}
		rowIndex[p.ID] = len(report.Rows)
		report.Rows = append(report.Rows, row)
	}

	err = walkScheduledDays(patients, from, to, nil, func(day clinic.Date, p *clinic.Patient) {
		ri := rowIndex[p.ID]
		report.Rows[ri].Sessions++
		report.Rows[ri].Income = report.Rows[ri].Income.Add(p.SessionCost)
		report.TotalSessions++
		report.TotalIncome = report.TotalIncome.Add(p.SessionCost)
	})
	if err != nil {
		return nil, err
	}

	asc := report.Order == "asc"
	sort.SliceStable(report.Rows, func(i, j int) bool {
		if asc {
			return report.Rows[i].StartDate < report.Rows[j].StartDate
		}
		return report.Rows[i].StartDate > report.Rows[j].StartDate
	})

	return report, nil
}

func (s *StatisticsService) loadPatients(ctx context.Context, tenantID uuid.UUID) ([]clinic.Patient, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 1000
	return s.patientRepo.FindAll(ctx, tenantID, filter)
}

func validateMonth(year int, month time.Month) error {
	if year < 2000 || year > 2100 {
		return shared.NewDomainError("INVALID_INPUT", "Year out of range")
	}
	if month < time.January || month > time.December {
		return shared.NewDomainError("INVALID_INPUT", "Month out of range")
	}
	return nil
}
