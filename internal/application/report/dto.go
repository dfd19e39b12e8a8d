package report

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SummaryQuery asks for the dashboard rollup of one date.
// Date defaults to today; IncludePrepaid controls whether prepaid
// package payments count toward the monthly collected figure.
type SummaryQuery struct {
	Date           string `form:"date"`
	IncludePrepaid bool   `form:"include_prepaid"`
}

// DashboardSummary is the landing-page rollup
type DashboardSummary struct {
	Date             string          `json:"date"`
	ActivePatients   int             `json:"active_patients"`
	ExpiredActive    int             `json:"expired_active"`
	ScheduledToday   int             `json:"scheduled_today"`
	ProjectedWeekly  decimal.Decimal `json:"projected_weekly"`
	ProjectedMonthly decimal.Decimal `json:"projected_monthly"`
	CollectedToday   decimal.Decimal `json:"collected_today"`
	CollectedMonth   decimal.Decimal `json:"collected_month"`
	IncludePrepaid   bool            `json:"include_prepaid"`
}

// RangeQuery asks for a day-by-day income projection over [From, To]
type RangeQuery struct {
	From        string      `json:"from" binding:"required"`
	To          string      `json:"to" binding:"required"`
	ExcludedIDs []uuid.UUID `json:"excluded_ids"`
}

// DayProjection is the projected workload of one calendar day
type DayProjection struct {
	Date     string          `json:"date"`
	Weekday  string          `json:"weekday"`
	Income   decimal.Decimal `json:"income"`
	Sessions int             `json:"sessions"`
	Patients []string        `json:"patients"`
}

// PatientShare is one patient's slice of a projection, ranked by income
type PatientShare struct {
	PatientID uuid.UUID       `json:"patient_id"`
	Name      string          `json:"name"`
	Sessions  int             `json:"sessions"`
	Income    decimal.Decimal `json:"income"`
}

// RangeProjection is the income calculator's full output. PerDay holds
// only days that accrue income; AverageDaily spreads the total over
// every day in the range, income-free days included.
type RangeProjection struct {
	From          string          `json:"from"`
	To            string          `json:"to"`
	Days          int             `json:"days"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalSessions int             `json:"total_sessions"`
	AverageDaily  decimal.Decimal `json:"average_daily"`
	PerDay        []DayProjection `json:"per_day"`
	PerPatient    []PatientShare  `json:"per_patient"`
}

// WeekdayCount is one bar of the busiest-day histogram
type WeekdayCount struct {
	Weekday  string `json:"weekday"`
	Sessions int    `json:"sessions"`
}

// DiagnosisCount is one slice of the diagnosis distribution
type DiagnosisCount struct {
	Diagnosis string `json:"diagnosis"`
	Patients  int    `json:"patients"`
}

// MonthStatistics is the statistics view of one calendar month.
// ActiveInMonth counts patients whose treatment window overlaps the
// month, whatever their current status; the diagnosis distribution is
// bucketed over the same set.
type MonthStatistics struct {
	Year                  int              `json:"year"`
	Month                 int              `json:"month"`
	TotalSessions         int              `json:"total_sessions"`
	TotalIncome           decimal.Decimal  `json:"total_income"`
	ActiveInMonth         int              `json:"active_in_month"`
	WeekdayHistogram      []WeekdayCount   `json:"weekday_histogram"`
	TopPatients           []PatientShare   `json:"top_patients"`
	DiagnosisDistribution []DiagnosisCount `json:"diagnosis_distribution"`
}

// MonthReportRow is one patient's line in the monthly report
type MonthReportRow struct {
	PatientID     uuid.UUID       `json:"patient_id"`
	Name          string          `json:"name"`
	Diagnosis     string          `json:"diagnosis"`
	StartDate     string          `json:"start_date"`
	EndDate       *string         `json:"end_date,omitempty"`
	PaymentMethod string          `json:"payment_method"`
	Sessions      int             `json:"sessions"`
	Income        decimal.Decimal `json:"income"`
}

// MonthReport is the per-patient monthly report
type MonthReport struct {
	Year          int              `json:"year"`
	Month         int              `json:"month"`
	Order         string           `json:"order"`
	TotalSessions int              `json:"total_sessions"`
	TotalIncome   decimal.Decimal  `json:"total_income"`
	Rows          []MonthReportRow `json:"rows"`
}
