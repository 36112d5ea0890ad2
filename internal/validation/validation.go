package validation

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/p2sg/wiseinvestor/internal/metrics"
	"github.com/p2sg/wiseinvestor/internal/types"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

// Bounds for selectors accepted from callers.
const (
	MinYear          = 2000
	MaxYear          = 2100
	MaxLookbackYears = 10
	MaxIDLength      = 128
)

// Report export choices.
var (
	ReportTypes   = []string{"executive", "financial", "donors", "campaigns", "strategy"}
	ReportFormats = []string{"pdf", "csv", "xlsx"}
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Collector accumulates validation errors without failing on first.
type Collector struct {
	errors []ValidationError
}

// Add appends a validation error to the collector if non-nil.
func (c *Collector) Add(err *ValidationError) {
	if err != nil {
		c.errors = append(c.errors, *err)
	}
}

// HasErrors returns true if the collector has accumulated any errors.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns all accumulated validation errors.
func (c *Collector) Errors() []ValidationError {
	return c.errors
}

// Err returns the accumulated errors as an error, or nil when there are none.
func (c *Collector) Err() error {
	if len(c.errors) == 0 {
		return nil
	}
	return Errors(c.errors)
}

// Errors is a non-empty list of validation failures returned as an error.
type Errors []ValidationError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = v.Field + ": " + v.Message
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// ValidateRequired returns an error if the value is empty or whitespace-only.
func ValidateRequired(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   field,
			Message: "is required",
		}
	}
	return nil
}

// ValidateEnum returns an error if the value is not in the allowed list.
func ValidateEnum(field, value string, allowed []string) *ValidationError {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidateRange returns an error if the value is outside [min, max]. NaN is
// never in range.
func ValidateRange(field string, value, min, max float64) *ValidationError {
	if math.IsNaN(value) || value < min || value > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be between %.0f and %.0f", min, max),
		}
	}
	return nil
}

// ValidateIdentifier checks an id that will be interpolated into an upstream path.
func ValidateIdentifier(field, value string) *ValidationError {
	if err := ValidateRequired(field, value); err != nil {
		return err
	}
	if !utf8.ValidString(value) {
		return &ValidationError{Field: field, Message: "must be valid UTF-8"}
	}
	if strings.ContainsAny(value, "\x00/") {
		return &ValidationError{Field: field, Message: "must not contain slashes or null bytes"}
	}
	if utf8.RuneCountInString(value) > MaxIDLength {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("exceeds maximum length of %d characters", MaxIDLength),
		}
	}
	return nil
}

// ValidateParams checks the dashboard selectors. Zero values mean server default.
func ValidateParams(p types.Params) []ValidationError {
	var c Collector
	if p.Period != "" {
		c.Add(ValidateEnum("period", p.Period, types.Periods))
	}
	if p.Year != 0 {
		c.Add(ValidateRange("year", float64(p.Year), MinYear, MaxYear))
	}
	if p.Years != 0 {
		c.Add(ValidateRange("years", float64(p.Years), 1, MaxLookbackYears))
	}
	return c.Errors()
}

// ValidateWhatIf checks the slider positions and the baseline revenue.
func ValidateWhatIf(p metrics.WhatIfParams, base float64) []ValidationError {
	var c Collector
	c.Add(ValidateRange("traffic", p.TrafficIncrease, metrics.MinAdjustment, metrics.MaxAdjustment))
	c.Add(ValidateRange("conversion", p.ConversionIncrease, metrics.MinAdjustment, metrics.MaxAdjustment))
	c.Add(ValidateRange("gift_size", p.GiftSizeIncrease, metrics.MinAdjustment, metrics.MaxAdjustment))
	switch {
	case math.IsNaN(base) || math.IsInf(base, 0):
		c.Add(&ValidationError{Field: "base", Message: "must be a finite number"})
	case base < 0:
		c.Add(&ValidationError{Field: "base", Message: "must not be negative"})
	}
	return c.Errors()
}

// ValidateReportRequest checks an export request before it is sent upstream.
func ValidateReportRequest(r analytics.ReportRequest) []ValidationError {
	var c Collector
	if err := ValidateRequired("report_type", r.ReportType); err != nil {
		c.Add(err)
	} else {
		c.Add(ValidateEnum("report_type", r.ReportType, ReportTypes))
	}
	if err := ValidateRequired("format", r.Format); err != nil {
		c.Add(err)
	} else {
		c.Add(ValidateEnum("format", r.Format, ReportFormats))
	}
	if r.Period != "" {
		c.Add(ValidateEnum("period", r.Period, types.Periods))
	}
	if r.Year != 0 {
		c.Add(ValidateRange("year", float64(r.Year), MinYear, MaxYear))
	}
	return c.Errors()
}
