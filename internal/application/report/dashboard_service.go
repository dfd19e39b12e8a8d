package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/physiomanager/backend/internal/domain/billing"
	"github.com/physiomanager/backend/internal/domain/clinic"
)

// DashboardService produces the landing-page rollup: projected income
// from the weekly recurrence patterns and actual collected income from
// the payment ledger. Everything is recomputed from scratch on each
// call; the roster of a single practice stays small enough for that.
type DashboardService struct {
	patientRepo clinic.PatientRepository
	paymentRepo billing.PaymentRecordRepository
	logger      *zap.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	patientRepo clinic.PatientRepository,
	paymentRepo billing.PaymentRecordRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		patientRepo: patientRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

// Summary computes the dashboard for one date, usually today.
//
// Projected figures assume full attendance: weekly is the sum of
// session cost times scheduled days per active patient, monthly is a
// flat four weeks of that. Collected figures come from payment records
// dated on the summary date and inside its calendar month; prepaid
// package payments only count toward the monthly figure when asked,
// since they are revenue for sessions not yet rendered.
func (s *DashboardService) Summary(ctx context.Context, tenantID uuid.UUID, query SummaryQuery) (*DashboardSummary, error) {
	date := clinic.Today()
	if query.Date != "" {
		var err error
		date, err = clinic.NewDate(query.Date)
		if err != nil {
			return nil, err
		}
	}

	patients, err := s.patientRepo.FindActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		Date:           date.String(),
		ActivePatients: len(patients),
		IncludePrepaid: query.IncludePrepaid,
	}

	weekly := decimal.Zero
	for i := range patients {
		p := &patients[i]
		weekly = weekly.Add(p.WeeklyProjectedIncome())
		if p.IsExpired(date) {
			summary.ExpiredActive++
		}
		if clinic.IsScheduled(p, date) {
			summary.ScheduledToday++
		}
	}
	summary.ProjectedWeekly = weekly
	summary.ProjectedMonthly = weekly.Mul(decimal.NewFromInt(4))

	monthStart, monthEnd := clinic.MonthBounds(date.Year(), date.Month())
	payments, err := s.paymentRepo.FindByDateRange(ctx, tenantID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	collectedToday := decimal.Zero
	collectedMonth := decimal.Zero
	for i := range payments {
		r := &payments[i]
		if r.Date == date {
			collectedToday = collectedToday.Add(r.Amount)
		}
		if r.IsPrepaidPackage() && !query.IncludePrepaid {
			continue
		}
		collectedMonth = collectedMonth.Add(r.Amount)
	}
	summary.CollectedToday = collectedToday
	summary.CollectedMonth = collectedMonth

	return summary, nil
}
