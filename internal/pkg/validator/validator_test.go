package validator

import (
	"strings"
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // valid UUIDv7
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B", // valid UUIDv7 (uppercase)
	}
	invalid := []string{
		"123e4567-e89b-12d3-a456-426614174000", // not v7
		"123E4567-E89B-12D3-A456-426614174000", // not v7
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"",                                     // empty
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestParseMonth(t *testing.T) {
	valid := []string{"2026-01", "1999-12", " 2026-02 "}
	invalid := []string{"2026-13", "2026/01", "01-2026", "2026-1-01", ""}
	for _, s := range valid {
		if _, ok := ParseMonth(s); !ok {
			t.Errorf("ParseMonth(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := ParseMonth(s); ok {
			t.Errorf("ParseMonth(%q) = true, want false", s)
		}
	}
}

func TestIsXLSXFileName(t *testing.T) {
	valid := []string{"cosec.xlsx", "BBHR Export.XLSX", "a.b.xlsx"}
	invalid := []string{"cosec.xls", "cosec.csv", "xlsx", ""}
	for _, s := range valid {
		if !IsXLSXFileName(s) {
			t.Errorf("IsXLSXFileName(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsXLSXFileName(s) {
			t.Errorf("IsXLSXFileName(%q) = true, want false", s)
		}
	}
}

func TestIsValidReportName(t *testing.T) {
	valid := []string{"January 2026", "jan_2026-final", "Payroll (v2)"}
	invalid := []string{"", "../etc/passwd", "a/b", "name\\x", strings.Repeat("x", 101)}
	for _, s := range valid {
		if !IsValidReportName(s) {
			t.Errorf("IsValidReportName(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidReportName(s) {
			t.Errorf("IsValidReportName(%q) = true, want false", s)
		}
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "name", Message: "invalid"},
		{Field: "month", Message: "required"},
	}
	got := errs.Error()
	want := "name: invalid; month: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "name", Message: "invalid"},
		{Field: "month", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"name": "invalid", "month": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}
