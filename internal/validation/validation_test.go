package validation

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/p2sg/wiseinvestor/internal/metrics"
	"github.com/p2sg/wiseinvestor/internal/types"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

func fields(errs []ValidationError) []string {
	var out []string
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

// --- Collector Tests ---

func TestCollector_AccumulatesNonNil(t *testing.T) {
	var c Collector
	c.Add(nil)
	if c.HasErrors() {
		t.Fatal("HasErrors() = true after adding nil")
	}
	c.Add(&ValidationError{Field: "a", Message: "x"})
	c.Add(nil)
	c.Add(&ValidationError{Field: "b", Message: "y"})
	if diff := cmp.Diff([]string{"a", "b"}, fields(c.Errors())); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

// --- ValidateRequired / ValidateEnum / ValidateRange Tests ---

func TestCollector_Err(t *testing.T) {
	var c Collector
	if err := c.Err(); err != nil {
		t.Fatalf("Err() on empty collector = %v, want nil", err)
	}

	c.Add(&ValidationError{Field: "org_id", Message: "is required"})
	c.Add(&ValidationError{Field: "year", Message: "must be between 2000 and 2100"})

	err := c.Err()
	var errs Errors
	if !errors.As(err, &errs) || len(errs) != 2 {
		t.Fatalf("Err() = %v, want Errors with 2 entries", err)
	}
	want := "invalid input: org_id: is required; year: must be between 2000 and 2100"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestValidateRequired(t *testing.T) {
	for _, v := range []string{"", "   ", "\t\n"} {
		if err := ValidateRequired("name", v); err == nil {
			t.Errorf("ValidateRequired(%q) = nil, want error", v)
		}
	}
	if err := ValidateRequired("name", "gala"); err != nil {
		t.Errorf("ValidateRequired(gala) = %v", err)
	}
}

func TestValidateEnum(t *testing.T) {
	if err := ValidateEnum("period", "quarter", types.Periods); err != nil {
		t.Errorf("ValidateEnum(quarter) = %v", err)
	}
	err := ValidateEnum("period", "fortnight", types.Periods)
	if err == nil {
		t.Fatal("ValidateEnum(fortnight) = nil, want error")
	}
	if !strings.Contains(err.Message, "month, quarter, year, ytd") {
		t.Errorf("Message = %q, want allowed values listed", err.Message)
	}
}

func TestValidateRange_Boundaries(t *testing.T) {
	tests := []struct {
		value float64
		ok    bool
	}{
		{0, true},
		{100, true},
		{50.5, true},
		{-0.01, false},
		{100.01, false},
		{math.NaN(), false},
		{math.Inf(1), false},
		{math.Inf(-1), false},
	}
	for _, tt := range tests {
		err := ValidateRange("traffic", tt.value, 0, 100)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateRange(%v) = %v, want ok=%v", tt.value, err, tt.ok)
		}
	}
}

// --- ValidateIdentifier Tests ---

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"simple", "org-42", true},
		{"uuid", "0b6f2a4e-6b1c-4a7e-9d3f-1c2b3a4d5e6f", true},
		{"empty", "", false},
		{"slash", "org/../admin", false},
		{"null byte", "org\x00", false},
		{"invalid utf8", string([]byte{0xff, 0xfe}), false},
		{"too long", strings.Repeat("a", MaxIDLength+1), false},
		{"at limit", strings.Repeat("a", MaxIDLength), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier("orgID", tt.value)
			if (err == nil) != tt.ok {
				t.Errorf("ValidateIdentifier(%q) = %v, want ok=%v", tt.value, err, tt.ok)
			}
		})
	}
}

// --- ValidateParams Tests ---

func TestValidateParams_ZeroValuesAllowed(t *testing.T) {
	if errs := ValidateParams(types.Params{}); len(errs) != 0 {
		t.Errorf("ValidateParams(zero) = %v, want none", errs)
	}
}

func TestValidateParams_CollectsAllErrors(t *testing.T) {
	errs := ValidateParams(types.Params{Period: "decade", Year: 1899, Years: 50})
	if diff := cmp.Diff([]string{"period", "year", "years"}, fields(errs)); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

// --- ValidateWhatIf Tests ---

func TestValidateWhatIf_SliderBounds(t *testing.T) {
	ok := metrics.WhatIfParams{TrafficIncrease: 0, ConversionIncrease: 100, GiftSizeIncrease: 37.5}
	if errs := ValidateWhatIf(ok, 1_000_000); len(errs) != 0 {
		t.Errorf("ValidateWhatIf(in range) = %v", errs)
	}

	bad := metrics.WhatIfParams{TrafficIncrease: -1, ConversionIncrease: 101, GiftSizeIncrease: 10}
	errs := ValidateWhatIf(bad, -5)
	if diff := cmp.Diff([]string{"traffic", "conversion", "base"}, fields(errs)); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateWhatIf_NonFiniteRejected(t *testing.T) {
	p := metrics.WhatIfParams{TrafficIncrease: math.NaN(), ConversionIncrease: 10, GiftSizeIncrease: math.Inf(1)}

	errs := ValidateWhatIf(p, math.NaN())

	if diff := cmp.Diff([]string{"traffic", "gift_size", "base"}, fields(errs)); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

// --- ValidateReportRequest Tests ---

func TestValidateReportRequest(t *testing.T) {
	tests := []struct {
		name string
		req  analytics.ReportRequest
		want []string
	}{
		{"valid", analytics.ReportRequest{ReportType: "financial", Format: "pdf", Year: 2024}, nil},
		{"missing both", analytics.ReportRequest{}, []string{"report_type", "format"}},
		{"unknown format", analytics.ReportRequest{ReportType: "donors", Format: "docx"}, []string{"format"}},
		{"bad period", analytics.ReportRequest{ReportType: "donors", Format: "csv", Period: "week"}, []string{"period"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, fields(ValidateReportRequest(tt.req))); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
