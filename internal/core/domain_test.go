package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-03-15", true},
		{"2024-12-31", true},
		{" 2024-01-01 ", true},
		{"2024-13-01", false},
		{"2024-02-30", false},
		{"15/03/2024", false},
		{"", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
		if tc.ok && d.ISO() == "" {
			t.Fatalf("%q produced empty ISO form", tc.in)
		}
	}
}

func TestDateISO(t *testing.T) {
	if got := NewDate(2024, 3, 5).ISO(); got != "2024-03-05" {
		t.Fatalf("expected 2024-03-05, got %s", got)
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		UserID:      1,
		Amount:      Money{Cents: 5000},
		Category:    "Food",
		Description: "groceries",
		Date:        NewDate(2024, 3, 15),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{UserID: 0, Amount: Money{Cents: 1}, Category: "c", Date: NewDate(2024, 1, 1)},
		{UserID: 1, Amount: Money{Cents: -1}, Category: "c", Date: NewDate(2024, 1, 1)},
		{UserID: 1, Amount: Money{Cents: 1}, Category: "  ", Date: NewDate(2024, 1, 1)},
		{UserID: 1, Amount: Money{Cents: 1}, Category: "c", Date: Date{Time: time.Time{}}},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMonthRange(t *testing.T) {
	cases := []struct {
		year, month int
		start, end  string
	}{
		{2024, 3, "2024-03-01", "2024-04-01"},
		{2024, 12, "2024-12-01", "2025-01-01"}, // year rollover
		{2025, 1, "2025-01-01", "2025-02-01"},
	}
	for _, tc := range cases {
		start, end, err := MonthRange(tc.year, tc.month)
		if err != nil {
			t.Fatalf("(%d,%d) unexpected error %v", tc.year, tc.month, err)
		}
		if start != tc.start || end != tc.end {
			t.Fatalf("(%d,%d) expected [%s,%s), got [%s,%s)", tc.year, tc.month, tc.start, tc.end, start, end)
		}
	}

	if _, _, err := MonthRange(2024, 0); err == nil {
		t.Fatal("month 0 expected error")
	}
	if _, _, err := MonthRange(2024, 13); err == nil {
		t.Fatal("month 13 expected error")
	}
}
