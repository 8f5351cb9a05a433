package taxinvoice

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/erp/taxinvoice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Validation rule identifiers reported in ValidationError.Rule
const (
	RuleRequired = "required"
	RuleNumeric  = "numeric"
	RuleInteger  = "integer"
	RuleMinimum  = "min"
	RuleMaximum  = "max"
	RulePattern  = "pattern"
	RuleDate     = "date"
)

// Error codes of validation failures
const (
	CodeValidationRequired = "VALIDATION_REQUIRED"
	CodeValidationFormat   = "VALIDATION_FORMAT"
	CodeValidationRange    = "VALIDATION_RANGE"
	CodeValidationPattern  = "VALIDATION_PATTERN"
)

// DocumentNumberPattern is the shape of a Faktur Pajak number: 010.000-24.12345678
var DocumentNumberPattern = regexp.MustCompile(`^\d{3}\.\d{3}-\d{2}\.\d{8}$`)

var maxPercentage = decimal.NewFromInt(100)

// DateLayouts are the accepted input layouts of date fields
var DateLayouts = []string{"2006-01-02", time.RFC3339}

// ValidationError reports the first field that failed validation
type ValidationError struct {
	Field FieldName
	Rule  string
	err   *shared.DomainError
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.err.Error()
}

// Unwrap exposes the DomainError so handlers can map its code
func (e *ValidationError) Unwrap() error {
	return e.err
}

func newValidationError(field FieldName, rule, code, message string) *ValidationError {
	return &ValidationError{
		Field: field,
		Rule:  rule,
		err:   shared.NewDomainError(code, message),
	}
}

// Validator gates submission. It never mutates the store.
type Validator struct {
	schema *Schema
}

// NewValidator creates a validator for schema
func NewValidator(schema *Schema) *Validator {
	return &Validator{schema: schema}
}

// Validate checks fields in schema order and returns the first failure
func (v *Validator) Validate(snap Snapshot) error {
	for _, spec := range v.schema.specs {
		if err := v.validateField(spec, snap.Value(spec.Name)); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) validateField(spec FieldSpec, raw string) error {
	if IsBlank(raw) {
		if spec.Required {
			return newValidationError(spec.Name, RuleRequired, CodeValidationRequired,
				fmt.Sprintf("%s is required", spec.Label))
		}
		return nil
	}

	switch spec.Kind {
	case FieldKindMoney, FieldKindPercentage:
		n, ok := ParseAmount(raw)
		if !ok {
			return newValidationError(spec.Name, RuleNumeric, CodeValidationFormat,
				fmt.Sprintf("%s must be a valid number", spec.Label))
		}
		if n.IsNegative() {
			return newValidationError(spec.Name, RuleMinimum, CodeValidationRange,
				fmt.Sprintf("%s cannot be negative", spec.Label))
		}
		if spec.Kind == FieldKindMoney && !n.IsInteger() {
			return newValidationError(spec.Name, RuleInteger, CodeValidationFormat,
				fmt.Sprintf("%s must be a whole rupiah amount", spec.Label))
		}
		if spec.Kind == FieldKindPercentage && n.GreaterThan(maxPercentage) {
			return newValidationError(spec.Name, RuleMaximum, CodeValidationRange,
				fmt.Sprintf("%s cannot exceed 100", spec.Label))
		}
	case FieldKindDate:
		if _, ok := ParseDate(raw); !ok {
			return newValidationError(spec.Name, RuleDate, CodeValidationFormat,
				fmt.Sprintf("%s must be a date (YYYY-MM-DD)", spec.Label))
		}
	}

	if spec.Name == FieldDocumentNumber && !DocumentNumberPattern.MatchString(strings.TrimSpace(raw)) {
		return newValidationError(spec.Name, RulePattern, CodeValidationPattern,
			fmt.Sprintf("%s must match 000.000-00.00000000", spec.Label))
	}
	return nil
}

// ParseDate parses a date field value in any of DateLayouts
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
