package report

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/physiomanager/backend/internal/domain/shared"
)

// CalculatorService is the income calculator: a day-by-day projection
// of expected income over an arbitrary date range, with individual
// patients excludable from the what-if.
type CalculatorService struct {
	patientRepo clinic.PatientRepository
	logger      *zap.Logger
}

// NewCalculatorService creates a new CalculatorService
func NewCalculatorService(patientRepo clinic.PatientRepository, logger *zap.Logger) *CalculatorService {
	return &CalculatorService{
		patientRepo: patientRepo,
		logger:      logger,
	}
}

// ProjectRange walks every day in [from, to] and accrues the session
// cost of each scheduled, non-excluded patient into that day's total,
// that patient's share and the running totals. Session cost is a flat
// expected-value proxy regardless of payment method: the result
// estimates clinical workload value, not cash collected. Patients are
// ranked descending by income; ties keep roster order.
func (s *CalculatorService) ProjectRange(ctx context.Context, tenantID uuid.UUID, query RangeQuery) (*RangeProjection, error) {
	from, err := clinic.NewDate(query.From)
	if err != nil {
		return nil, err
	}
	to, err := clinic.NewDate(query.To)
	if err != nil {
		return nil, err
	}

	filter := shared.DefaultFilter()
	filter.PageSize = 1000
	patients, err := s.patientRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	excluded := make(map[uuid.UUID]bool, len(query.ExcludedIDs))
	for _, id := range query.ExcludedIDs {
		excluded[id] = true
	}

	projection := &RangeProjection{
		From:         query.From,
		To:           query.To,
		TotalIncome:  decimal.Zero,
		AverageDaily: decimal.Zero,
		PerDay:       make([]DayProjection, 0),
		PerPatient:   make([]PatientShare, 0),
	}

	// Accrue into one row per calendar day; empty days are dropped below
	dayIndex := make(map[clinic.Date]int)
	for day := from; !day.After(to); day = day.Next() {
		if len(projection.PerDay) >= maxProjectionDays {
			break
		}
		dayIndex[day] = len(projection.PerDay)
		projection.PerDay = append(projection.PerDay, DayProjection{
			Date:     day.String(),
			Weekday:  day.Weekday().String(),
			Income:   decimal.Zero,
			Patients: make([]string, 0),
		})
	}

	shareIndex := make(map[uuid.UUID]int)

	err = walkScheduledDays(patients, from, to, excluded, func(day clinic.Date, p *clinic.Patient) {
		di := dayIndex[day]
		projection.PerDay[di].Income = projection.PerDay[di].Income.Add(p.SessionCost)
		projection.PerDay[di].Sessions++
		projection.PerDay[di].Patients = append(projection.PerDay[di].Patients, p.Name)

		si, ok := shareIndex[p.ID]
		if !ok {
			si = len(projection.PerPatient)
			shareIndex[p.ID] = si
			projection.PerPatient = append(projection.PerPatient, PatientShare{
				PatientID: p.ID,
				Name:      p.Name,
				Income:    decimal.Zero,
			})
		}
		projection.PerPatient[si].Income = projection.PerPatient[si].Income.Add(p.SessionCost)
		projection.PerPatient[si].Sessions++

		projection.TotalIncome = projection.TotalIncome.Add(p.SessionCost)
		projection.TotalSessions++
	})
	if err != nil {
		return nil, err
	}

	// The breakdown lists only days that accrue income
	perDay := projection.PerDay[:0]
	for _, d := range projection.PerDay {
		if d.Income.IsPositive() {
			perDay = append(perDay, d)
		}
	}
	projection.PerDay = perDay

	projection.Days = rangeDays(from, to)
	if projection.Days > 0 {
		projection.AverageDaily = projection.TotalIncome.
			Div(decimal.NewFromInt(int64(projection.Days))).
			Round(0)
	}

	sort.SliceStable(projection.PerPatient, func(i, j int) bool {
		return projection.PerPatient[i].Income.GreaterThan(projection.PerPatient[j].Income)
	})
	return projection, nil
}
