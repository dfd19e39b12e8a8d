package csvimport

import "fmt"

// Row error codes surfaced to API clients
const (
	ErrCodeParsing       = "IMPORT_CSV_PARSING"
	ErrCodeRequiredField = "IMPORT_REQUIRED_FIELD"
	ErrCodeInvalidType   = "IMPORT_INVALID_TYPE"
	ErrCodeInvalidLength = "IMPORT_INVALID_LENGTH"
	ErrCodeInvalidRange  = "IMPORT_INVALID_RANGE"
	ErrCodeInvalidValue  = "IMPORT_INVALID_VALUE"
	ErrCodeDuplicate     = "IMPORT_DUPLICATE"
	ErrCodeRejected      = "IMPORT_ROW_REJECTED"
)

// RowError describes one problem with one row of the file
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a RowError
func NewRowError(row int, column, code, message string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message}
}

// ErrorCollection accumulates row errors up to a cap. The total count
// keeps growing past the cap so callers can report truncation.
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a collection holding at most maxErrors entries
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{
		errors:    make([]RowError, 0, maxErrors),
		maxErrors: maxErrors,
	}
}

// Add records an error
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddRequired records a missing required field
func (ec *ErrorCollection) AddRequired(row int, column string) {
	ec.Add(NewRowError(row, column, ErrCodeRequiredField, fmt.Sprintf("field '%s' is required", column)))
}

// AddType records a type mismatch
func (ec *ErrorCollection) AddType(row int, column, expected, value string) {
	e := NewRowError(row, column, ErrCodeInvalidType, fmt.Sprintf("expected %s", expected))
	e.Value = value
	ec.Add(e)
}

// AddLength records a length violation
func (ec *ErrorCollection) AddLength(row int, column string, minLen, maxLen int) {
	msg := fmt.Sprintf("length must be between %d and %d", minLen, maxLen)
	if minLen == 0 {
		msg = fmt.Sprintf("length must be at most %d", maxLen)
	}
	ec.Add(NewRowError(row, column, ErrCodeInvalidLength, msg))
}

// AddRange records a numeric range violation
func (ec *ErrorCollection) AddRange(row int, column, min, max string) {
	ec.Add(NewRowError(row, column, ErrCodeInvalidRange,
		fmt.Sprintf("value must be between %s and %s", min, max)))
}

// AddInvalid records a value-level failure with a custom message
func (ec *ErrorCollection) AddInvalid(row int, column, message, value string) {
	e := NewRowError(row, column, ErrCodeInvalidValue, message)
	e.Value = value
	ec.Add(e)
}

// Errors returns the collected errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// TotalCount returns the total number of errors including dropped ones
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors reports whether any error was recorded
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// IsTruncated reports whether errors were dropped past the cap
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > ec.maxErrors
}
