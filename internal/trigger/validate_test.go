package trigger

import (
	"errors"
	"testing"

	"github.com/shaiso/Impulse/internal/domain"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		trigger   domain.Trigger
		wantField string // "" — валидный триггер
	}{
		{
			name:    "valid five field cron",
			trigger: domain.Trigger{Cron: "*/5 * * * *", URL: "https://example.com/hook", Method: "POST"},
		},
		{
			name:    "valid six field cron",
			trigger: domain.Trigger{Cron: "0 */5 * * * *", URL: "https://example.com/hook", Method: "GET"},
		},
		{
			name:    "method is case insensitive",
			trigger: domain.Trigger{Cron: "* * * * *", URL: "http://example.com", Method: "delete"},
		},
		{
			name:      "missing cron",
			trigger:   domain.Trigger{URL: "https://example.com", Method: "GET"},
			wantField: "cron",
		},
		{
			name:      "malformed cron",
			trigger:   domain.Trigger{Cron: "every five minutes", URL: "https://example.com", Method: "GET"},
			wantField: "cron",
		},
		{
			name:      "too many cron fields",
			trigger:   domain.Trigger{Cron: "* * * * * * *", URL: "https://example.com", Method: "GET"},
			wantField: "cron",
		},
		{
			name:      "missing url",
			trigger:   domain.Trigger{Cron: "* * * * *", Method: "GET"},
			wantField: "url",
		},
		{
			name:      "relative url",
			trigger:   domain.Trigger{Cron: "* * * * *", URL: "/hook", Method: "GET"},
			wantField: "url",
		},
		{
			name:      "unsupported scheme",
			trigger:   domain.Trigger{Cron: "* * * * *", URL: "ftp://example.com/hook", Method: "GET"},
			wantField: "url",
		},
		{
			name:      "missing method",
			trigger:   domain.Trigger{Cron: "* * * * *", URL: "https://example.com"},
			wantField: "method",
		},
		{
			name:      "unsupported method",
			trigger:   domain.Trigger{Cron: "* * * * *", URL: "https://example.com", Method: "HEAD"},
			wantField: "method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.trigger)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}

			if !errors.Is(err, ErrInvalidTrigger) {
				t.Fatalf("expected ErrInvalidTrigger, got %v", err)
			}

			var invalid *InvalidTriggerError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidTriggerError, got %T", err)
			}
			if invalid.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, invalid.Field)
			}
		})
	}
}

// Проверки идут по порядку: первый невалидный field выигрывает.
func TestValidateShortCircuits(t *testing.T) {
	err := Validate(domain.Trigger{Cron: "bad", URL: "also-bad", Method: "NOPE"})

	var invalid *InvalidTriggerError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTriggerError, got %v", err)
	}
	if invalid.Field != "cron" {
		t.Errorf("expected cron to fail first, got %q", invalid.Field)
	}
}
