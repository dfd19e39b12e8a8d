package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/physiomanager/backend/internal/application/report"
)

// ReportHandler handles dashboard, calculator and statistics endpoints
type ReportHandler struct {
	BaseHandler
	dashboardService  *report.DashboardService
	calculatorService *report.CalculatorService
	statisticsService *report.StatisticsService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(
	dashboardService *report.DashboardService,
	calculatorService *report.CalculatorService,
	statisticsService *report.StatisticsService,
) *ReportHandler {
	return &ReportHandler{
		dashboardService:  dashboardService,
		calculatorService: calculatorService,
		statisticsService: statisticsService,
	}
}

// DashboardSummary returns the landing-page rollup for a reference date
func (h *ReportHandler) DashboardSummary(c *gin.Context) {
	tenantID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var query report.SummaryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	summary, err := h.dashboardService.Summary(c.Request.Context(), tenantID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// ProjectRange returns a day-by-day income projection for a date range,
// optionally excluding selected patients
func (h *ReportHandler) ProjectRange(c *gin.Context) {
	tenantID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var query report.RangeQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	projection, err := h.calculatorService.ProjectRange(c.Request.Context(), tenantID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, projection)
}

// MonthStatistics returns attendance and income statistics for a month
func (h *ReportHandler) MonthStatistics(c *gin.Context) {
	tenantID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	year, month, ok := h.parseMonth(c)
	if !ok {
		return
	}

	stats, err := h.statisticsService.MonthStatistics(c.Request.Context(), tenantID, year, month)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// MonthReport returns the per-patient billing breakdown for a month
func (h *ReportHandler) MonthReport(c *gin.Context) {
	tenantID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	year, month, ok := h.parseMonth(c)
	if !ok {
		return
	}

	rpt, err := h.statisticsService.MonthReport(c.Request.Context(), tenantID, year, month, c.Query("order"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rpt)
}

// parseMonth reads year and month query parameters, defaulting to the
// current month. It writes the error response itself when they are bad.
func (h *ReportHandler) parseMonth(c *gin.Context) (int, time.Month, bool) {
	now := time.Now()
	year, month := now.Year(), now.Month()

	if v := c.Query("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 2000 || parsed > 2200 {
			h.BadRequest(c, "Invalid year")
			return 0, 0, false
		}
		year = parsed
	}
	if v := c.Query("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			h.BadRequest(c, "Invalid month")
			return 0, 0, false
		}
		month = time.Month(parsed)
	}

	return year, month, true
}
