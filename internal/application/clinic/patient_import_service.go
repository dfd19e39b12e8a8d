package clinic

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/physiomanager/backend/internal/domain/shared"
	csvimport "github.com/physiomanager/backend/internal/infrastructure/import"
)

// Column names expected in a patient roster CSV
const (
	importColName          = "name"
	importColDiagnosis     = "diagnosis"
	importColNotes         = "notes"
	importColSessionCost   = "session_cost"
	importColScheduledDays = "scheduled_days"
	importColStartDate     = "start_date"
	importColEndDate       = "end_date"
	importColPaymentMethod = "payment_method"
	importColPackageSize   = "package_size"
)

const (
	importMaxRows   = 5000
	importMaxErrors = 100
)

// PatientImportResult reports the outcome of a roster import
type PatientImportResult struct {
	TotalRows int                  `json:"total_rows"`
	Imported  int                  `json:"imported"`
	Failed    int                  `json:"failed"`
	Errors    []csvimport.RowError `json:"errors,omitempty"`
	Truncated bool                 `json:"errors_truncated,omitempty"`
}

// PatientImportService bulk-creates patient files from a CSV roster.
// Validation runs over the whole file first; nothing is imported when
// any row fails, so a bad spreadsheet never half-loads.
type PatientImportService struct {
	patients *PatientService
	logger   *zap.Logger
}

// NewPatientImportService creates a new PatientImportService
func NewPatientImportService(patients *PatientService, logger *zap.Logger) *PatientImportService {
	return &PatientImportService{patients: patients, logger: logger}
}

func patientImportRules() []csvimport.FieldRule {
	return []csvimport.FieldRule{
		csvimport.Field(importColName).Required().MaxLength(200).Unique().Build(),
		csvimport.Field(importColDiagnosis).Required().MaxLength(500).Build(),
		csvimport.Field(importColNotes).MaxLength(2000).Build(),
		csvimport.Field(importColSessionCost).Required().Decimal().
			MinValue(decimal.Zero).Build(),
		csvimport.Field(importColScheduledDays).Required().
			Custom(validateWeekdayList).Build(),
		csvimport.Field(importColStartDate).Required().Date().Build(),
		csvimport.Field(importColEndDate).Date().Build(),
		csvimport.Field(importColPaymentMethod).Required().
			Pattern(`^(per_session|prepaid|postpaid)$`,
				"one of per_session, prepaid, postpaid").Build(),
		csvimport.Field(importColPackageSize).Int().
			MinValue(decimal.Zero).Build(),
	}
}

// validateWeekdayList checks a semicolon-separated list of weekday
// indices, 0 for Sunday through 6 for Saturday.
func validateWeekdayList(value string) error {
	_, err := parseWeekdayList(value)
	return err
}

func parseWeekdayList(value string) ([]int, error) {
	parts := strings.Split(value, ";")
	days := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil || d < 0 || d > 6 {
			return nil, fmt.Errorf("weekday indices must be 0..6 separated by ';'")
		}
		days = append(days, d)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("at least one weekday is required")
	}
	return days, nil
}

// ImportPatients reads a CSV roster and opens a patient file per row.
// File-level problems (encoding, missing columns) come back as an
// error; row-level problems come back inside the result.
func (s *PatientImportService) ImportPatients(ctx context.Context, tenantID uuid.UUID, r io.Reader) (*PatientImportResult, error) {
	parser, err := csvimport.NewParser(r)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_IMPORT_FILE", err.Error())
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, shared.NewDomainError("INVALID_IMPORT_FILE", err.Error())
	}

	required := []string{
		importColName, importColDiagnosis, importColSessionCost,
		importColScheduledDays, importColStartDate, importColPaymentMethod,
	}
	if missing := parser.MissingHeaders(required); len(missing) > 0 {
		return nil, shared.NewDomainError("INVALID_IMPORT_FILE",
			"Missing required columns: "+strings.Join(missing, ", "))
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_IMPORT_FILE", err.Error())
	}
	if len(rows) > importMaxRows {
		return nil, shared.NewDomainError("INVALID_IMPORT_FILE",
			fmt.Sprintf("File exceeds the maximum of %d rows", importMaxRows))
	}

	result := &PatientImportResult{TotalRows: len(rows)}

	validator := csvimport.NewValidator(patientImportRules(), importMaxErrors)
	valid := make([]*csvimport.Row, 0, len(rows))
	for _, row := range rows {
		if validator.ValidateRow(row) {
			valid = append(valid, row)
		} else {
			result.Failed++
		}
	}

	if validator.Errors().HasErrors() {
		result.Errors = validator.Errors().Errors()
		result.Truncated = validator.Errors().IsTruncated()
		s.logger.Info("Patient import rejected by validation",
			zap.Int("total_rows", result.TotalRows),
			zap.Int("error_rows", result.Failed))
		return result, nil
	}

	for _, row := range valid {
		req, err := rowToCreateRequest(row)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors,
				csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeRejected, err.Error()))
			continue
		}

		if _, err := s.patients.Create(ctx, tenantID, req); err != nil {
			result.Failed++
			result.Errors = append(result.Errors,
				csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeRejected, err.Error()))
			continue
		}
		result.Imported++
	}

	s.logger.Info("Patient import completed",
		zap.Int("total_rows", result.TotalRows),
		zap.Int("imported", result.Imported),
		zap.Int("failed", result.Failed))

	return result, nil
}

func rowToCreateRequest(row *csvimport.Row) (CreatePatientRequest, error) {
	cost, err := decimal.NewFromString(row.Get(importColSessionCost))
	if err != nil {
		return CreatePatientRequest{}, fmt.Errorf("invalid session cost: %w", err)
	}

	days, err := parseWeekdayList(row.Get(importColScheduledDays))
	if err != nil {
		return CreatePatientRequest{}, err
	}

	packageSize := 0
	if v := row.Get(importColPackageSize); v != "" {
		packageSize, err = strconv.Atoi(v)
		if err != nil {
			return CreatePatientRequest{}, fmt.Errorf("invalid package size: %w", err)
		}
	}

	return CreatePatientRequest{
		Name:          row.Get(importColName),
		Diagnosis:     row.Get(importColDiagnosis),
		Notes:         row.Get(importColNotes),
		SessionCost:   cost,
		ScheduledDays: days,
		StartDate:     row.Get(importColStartDate),
		EndDate:       row.Get(importColEndDate),
		PaymentMethod: row.Get(importColPaymentMethod),
		PackageSize:   packageSize,
	}, nil
}
