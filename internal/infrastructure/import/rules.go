package csvimport

import (
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// FieldType is the expected type of a column value
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeDate    FieldType = "date"
)

// FieldRule defines the validation applied to one column
type FieldRule struct {
	Column      string
	Type        FieldType
	Required    bool
	MinLength   int
	MaxLength   int
	MinValue    *decimal.Decimal
	MaxValue    *decimal.Decimal
	Pattern     *regexp.Regexp
	PatternDesc string
	DateFormat  string
	Unique      bool
	CustomFunc  func(value string) error
}

// FieldRuleBuilder builds field rules fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field starts a rule for the named column
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{
		rule: FieldRule{
			Column:     column,
			Type:       TypeString,
			DateFormat: "2006-01-02",
		},
	}
}

// Required marks the field as required
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// Int sets the field type to integer
func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = TypeInt
	return b
}

// Decimal sets the field type to decimal
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

// Date sets the field type to a date in the rule's date format
func (b *FieldRuleBuilder) Date() *FieldRuleBuilder {
	b.rule.Type = TypeDate
	return b
}

// MaxLength sets the maximum length
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// MinLength sets the minimum length
func (b *FieldRuleBuilder) MinLength(n int) *FieldRuleBuilder {
	b.rule.MinLength = n
	return b
}

// MinValue sets the minimum numeric value
func (b *FieldRuleBuilder) MinValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &v
	return b
}

// MaxValue sets the maximum numeric value
func (b *FieldRuleBuilder) MaxValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MaxValue = &v
	return b
}

// Pattern sets a regex the value must match
func (b *FieldRuleBuilder) Pattern(pattern, description string) *FieldRuleBuilder {
	b.rule.Pattern = regexp.MustCompile(pattern)
	b.rule.PatternDesc = description
	return b
}

// Unique marks the field as unique within the file
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

// Custom sets a custom validation function
func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.CustomFunc = fn
	return b
}

// Build returns the built rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// Validator applies field rules row by row, tracking uniqueness within
// the file and collecting errors as it goes.
type Validator struct {
	rules  []FieldRule
	seen   map[string]map[string]int // column -> value -> first row
	errors *ErrorCollection
}

// NewValidator creates a validator over the given rules
func NewValidator(rules []FieldRule, maxErrors int) *Validator {
	return &Validator{
		rules:  rules,
		seen:   make(map[string]map[string]int),
		errors: NewErrorCollection(maxErrors),
	}
}

// ValidateRow validates one row, returning true when it passes
func (v *Validator) ValidateRow(row *Row) bool {
	ok := true

	for _, rule := range v.rules {
		value := row.Get(rule.Column)

		if rule.Required && value == "" {
			v.errors.AddRequired(row.LineNumber, rule.Column)
			ok = false
			continue
		}
		if value == "" {
			continue
		}

		if err := v.checkType(value, rule); err != nil {
			v.errors.AddType(row.LineNumber, rule.Column, string(rule.Type), value)
			ok = false
			continue
		}

		if rule.MaxLength > 0 && len(value) > rule.MaxLength {
			v.errors.AddLength(row.LineNumber, rule.Column, rule.MinLength, rule.MaxLength)
			ok = false
		}
		if rule.MinLength > 0 && len(value) < rule.MinLength {
			v.errors.AddLength(row.LineNumber, rule.Column, rule.MinLength, rule.MaxLength)
			ok = false
		}

		if rule.Type == TypeInt || rule.Type == TypeDecimal {
			if !v.checkRange(row.LineNumber, rule, value) {
				ok = false
			}
		}

		if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
			v.errors.AddInvalid(row.LineNumber, rule.Column,
				"value must be "+rule.PatternDesc, value)
			ok = false
		}

		if rule.Unique {
			if v.seen[rule.Column] == nil {
				v.seen[rule.Column] = make(map[string]int)
			}
			if first, dup := v.seen[rule.Column][value]; dup {
				e := NewRowError(row.LineNumber, rule.Column, ErrCodeDuplicate,
					"duplicate value (first seen in row "+strconv.Itoa(first)+")")
				e.Value = value
				v.errors.Add(e)
				ok = false
			} else {
				v.seen[rule.Column][value] = row.LineNumber
			}
		}

		if rule.CustomFunc != nil {
			if err := rule.CustomFunc(value); err != nil {
				v.errors.AddInvalid(row.LineNumber, rule.Column, err.Error(), value)
				ok = false
			}
		}
	}

	return ok
}

func (v *Validator) checkType(value string, rule FieldRule) error {
	switch rule.Type {
	case TypeInt:
		_, err := strconv.ParseInt(value, 10, 64)
		return err
	case TypeDecimal:
		_, err := decimal.NewFromString(value)
		return err
	case TypeDate:
		_, err := time.Parse(rule.DateFormat, value)
		return err
	}
	return nil
}

func (v *Validator) checkRange(row int, rule FieldRule, value string) bool {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}
	if rule.MinValue != nil && d.LessThan(*rule.MinValue) {
		v.rangeError(row, rule)
		return false
	}
	if rule.MaxValue != nil && d.GreaterThan(*rule.MaxValue) {
		v.rangeError(row, rule)
		return false
	}
	return true
}

func (v *Validator) rangeError(row int, rule FieldRule) {
	min, max := "-inf", "+inf"
	if rule.MinValue != nil {
		min = rule.MinValue.String()
	}
	if rule.MaxValue != nil {
		max = rule.MaxValue.String()
	}
	v.errors.AddRange(row, rule.Column, min, max)
}

// Errors returns the collected errors
func (v *Validator) Errors() *ErrorCollection {
	return v.errors
}
