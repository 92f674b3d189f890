package configs

import (
	"strings"
	"testing"
	"time"
)

var configKeys = []string{
	"ENVIRONMENT", "PORT", "POW_DIFFICULTY", "ALLOWED_ORIGINS", "JWT_SECRET",
	"STORE_DRIVER", "DATABASE_URL", "MONGO_URI", "MONGO_DATABASE",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "MAIL_FROM", "SMTP_PLAINTEXT",
	"AUTH_TIMEOUT", "OTP_TTL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Environment != "development" || cfg.Port != 5500 {
		t.Errorf("unexpected server defaults: %+v", cfg)
	}
	if cfg.StoreDriver != StoreDriverPostgres || !strings.HasPrefix(cfg.DatabaseDSN, "postgres://") {
		t.Errorf("unexpected store defaults: %q %q", cfg.StoreDriver, cfg.DatabaseDSN)
	}
	if cfg.AuthTimeout != 5*time.Second || cfg.OTPTTL != 10*time.Minute {
		t.Errorf("unexpected timing defaults: %s %s", cfg.AuthTimeout, cfg.OTPTTL)
	}
	if cfg.MailEnabled() {
		t.Error("mail should be disabled without SMTP_HOST")
	}
	if cfg.PowDifficulty != 0 {
		t.Errorf("PoW should default to disabled, got %d", cfg.PowDifficulty)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("STORE_DRIVER", "MONGO")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USERNAME", "bot@example.com")
	t.Setenv("AUTH_TIMEOUT", "750ms")
	t.Setenv("SMTP_PLAINTEXT", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Port != 8081 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.StoreDriver != StoreDriverMongo || cfg.MongoDatabase != "backbench" {
		t.Errorf("store = %q/%q", cfg.StoreDriver, cfg.MongoDatabase)
	}
	if cfg.MailFrom != "bot@example.com" {
		t.Errorf("MailFrom should default to SMTP_USERNAME, got %q", cfg.MailFrom)
	}
	if !cfg.SMTPPlaintext {
		t.Error("SMTP_PLAINTEXT was not applied")
	}
	if cfg.AuthTimeout != 750*time.Millisecond {
		t.Errorf("AuthTimeout = %s", cfg.AuthTimeout)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PORT": "eighty"}},
		{"privileged port", map[string]string{"PORT": "80"}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "sqlite"}},
		{"mongo without uri", map[string]string{"STORE_DRIVER": "mongo"}},
		{"negative timeout", map[string]string{"AUTH_TIMEOUT": "-1s"}},
		{"pow too hard", map[string]string{"POW_DIFFICULTY": "12"}},
		{"production without secret", map[string]string{"ENVIRONMENT": "production", "DATABASE_URL": "postgres://x", "SMTP_HOST": "smtp", "MAIL_FROM": "a@b"}},
		{"production without smtp", map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": "s", "DATABASE_URL": "postgres://x"}},
		{"bad plaintext flag", map[string]string{"SMTP_PLAINTEXT": "maybe"}},
		{"production plaintext smtp", map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": "s", "DATABASE_URL": "postgres://x", "SMTP_HOST": "smtp", "MAIL_FROM": "a@b", "SMTP_PLAINTEXT": "true"}},
		{"production memory store", map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": "s", "STORE_DRIVER": "memory"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
