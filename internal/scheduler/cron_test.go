package scheduler

import (
	"testing"
	"time"
)

func TestValidateExpr(t *testing.T) {
	valid := []string{
		"* * * * *",
		"*/5 * * * *",
		"0 0 * * 1",
		"30 */2 * * * *", // 6 полей, с секундами
		"@hourly",
	}
	for _, expr := range valid {
		if err := ValidateExpr(expr); err != nil {
			t.Errorf("%q must be valid: %v", expr, err)
		}
	}

	invalid := []string{
		"",
		"not-a-cron",
		"* * * *",       // 4 поля
		"* * * * * * *", // 7 полей
		"61 * * * *",
	}
	for _, expr := range invalid {
		if err := ValidateExpr(expr); err == nil {
			t.Errorf("%q must be invalid", expr)
		}
	}
}

func TestNextAfter(t *testing.T) {
	from := time.Date(2026, 8, 27, 10, 2, 30, 0, time.UTC)

	next, err := NextAfter("*/5 * * * *", from)
	if err != nil {
		t.Fatalf("NextAfter: %v", err)
	}

	want := time.Date(2026, 8, 27, 10, 5, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestNextAfterSixFields(t *testing.T) {
	from := time.Date(2026, 8, 27, 10, 0, 10, 0, time.UTC)

	next, err := NextAfter("30 * * * * *", from)
	if err != nil {
		t.Fatalf("NextAfter: %v", err)
	}

	want := time.Date(2026, 8, 27, 10, 0, 30, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}
