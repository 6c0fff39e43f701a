package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("MAIL_FROM_ADDRESS", "no-reply@clinic.example")
	os.Setenv("MAIL_CLINIC_RECIPIENTS", "frontdesk@clinic.example")
	t.Cleanup(os.Clearenv)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	tests := []struct {
		name     string
		actual   any
		expected any
	}{
		{"RateLimit.MaxSubmissions", cfg.RateLimit.MaxSubmissions, 5},
		{"RateLimit.Window", cfg.RateLimit.Window, 1 * time.Hour},
		{"RateLimit.Backend", cfg.RateLimit.Backend, "memory"},
		{"Mail.Provider", cfg.Mail.Provider, "ses"},
		{"Server.ReadTimeout", cfg.Server.ReadTimeout, 15 * time.Second},
		{"Server.WriteTimeout", cfg.Server.WriteTimeout, 15 * time.Second},
		{"Server.IdleTimeout", cfg.Server.IdleTimeout, 60 * time.Second},
		{"Journal.AuditFile", cfg.Journal.AuditFile, "submissions.log"},
	}

	for _, tt := range tests {
		if tt.actual != tt.expected {
			t.Errorf("%s: got %v, want %v", tt.name, tt.actual, tt.expected)
		}
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("RATE_LIMIT_MAX_SUBMISSIONS", "3")
	os.Setenv("RATE_LIMIT_WINDOW", "30m")
	os.Setenv("RATE_LIMIT_BACKEND", "redis")
	os.Setenv("MAIL_PROVIDER", "smtp")
	os.Setenv("MAIL_CLINIC_RECIPIENTS", "a@clinic.example, b@clinic.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.RateLimit.MaxSubmissions != 3 {
		t.Errorf("MaxSubmissions: got %d, want 3", cfg.RateLimit.MaxSubmissions)
	}
	if cfg.RateLimit.Window != 30*time.Minute {
		t.Errorf("Window: got %v, want 30m", cfg.RateLimit.Window)
	}
	if cfg.RateLimit.Backend != "redis" {
		t.Errorf("Backend: got %q, want redis", cfg.RateLimit.Backend)
	}
	if len(cfg.Mail.ClinicRecipients) != 2 {
		t.Errorf("ClinicRecipients: got %v, want two entries", cfg.Mail.ClinicRecipients)
	}
}

func TestLoad_MissingDBPassword(t *testing.T) {
	os.Setenv("MAIL_FROM_ADDRESS", "no-reply@clinic.example")
	os.Setenv("MAIL_CLINIC_RECIPIENTS", "frontdesk@clinic.example")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for missing DB_PASSWORD")
	}
}

func TestLoad_MissingClinicRecipients(t *testing.T) {
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("MAIL_FROM_ADDRESS", "no-reply@clinic.example")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for missing MAIL_CLINIC_RECIPIENTS")
	}
}

func TestLoad_InvalidBackend(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("RATE_LIMIT_BACKEND", "etcd")

	if _, err := Load(); err == nil {
		t.Fatal("Load() = nil, want error for unsupported backend")
	}
}

func TestLoad_InvalidDuration_FallsBackToDefault(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("RATE_LIMIT_WINDOW", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	if cfg.RateLimit.Window != 1*time.Hour {
		t.Errorf("Window: got %v, want default 1h", cfg.RateLimit.Window)
	}
}
