package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		TemplatePath:    filepath.Join(t.TempDir(), DefaultTemplateName),
		OutputDir:       t.TempDir(),
		MaxTemplateSize: DefaultMaxTemplateSize,
		Storage:         StorageFile,
		LogLevel:        DefaultLogLevel,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Storage != StorageFile {
		t.Errorf("Expected default storage %q, got %q", StorageFile, cfg.Storage)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("Expected default log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
	if cfg.MaxTemplateSize != DefaultMaxTemplateSize {
		t.Errorf("Expected default max template size %d, got %d", DefaultMaxTemplateSize, cfg.MaxTemplateSize)
	}
	if filepath.Base(cfg.TemplatePath) != DefaultTemplateName {
		t.Errorf("Expected template path ending in %q, got %q", DefaultTemplateName, cfg.TemplatePath)
	}
	if cfg.NoReminder || cfg.NoOpen {
		t.Error("Reminder and open steps should be enabled by default")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(cfg *Config)
		expectedError bool
		errorContains string
	}{
		{
			name:   "valid configuration",
			mutate: func(cfg *Config) {},
		},
		{
			name:          "invalid storage backend",
			mutate:        func(cfg *Config) { cfg.Storage = "redis" },
			expectedError: true,
			errorContains: "storage must be one of",
		},
		{
			name:   "storage none needs no path",
			mutate: func(cfg *Config) { cfg.Storage = StorageNone },
		},
		{
			name:          "empty output directory",
			mutate:        func(cfg *Config) { cfg.OutputDir = "" },
			expectedError: true,
			errorContains: "output directory",
		},
		{
			name:          "zero max template size",
			mutate:        func(cfg *Config) { cfg.MaxTemplateSize = 0 },
			expectedError: true,
			errorContains: "maximum template size",
		},
		{
			name:          "invalid log level",
			mutate:        func(cfg *Config) { cfg.LogLevel = "verbose" },
			expectedError: true,
			errorContains: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.expectedError {
				if err == nil {
					t.Fatal("Expected validation error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error containing %q, got %q", tt.errorContains, err.Error())
				}
			} else if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
		})
	}
}

func TestConfig_ValidateCreatesOutputDir(t *testing.T) {
	cfg := validConfig(t)
	cfg.OutputDir = filepath.Join(t.TempDir(), "slips")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if _, err := os.Stat(cfg.OutputDir); err != nil {
		t.Errorf("Expected output directory to be created: %v", err)
	}
}

func TestConfig_ValidateDefaultsStoragePath(t *testing.T) {
	cfg := validConfig(t)
	cfg.StoragePath = ""
	cfg.Storage = StorageFile
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.StoragePath != filepath.Join(cfg.OutputDir, "leihschein-registry.json") {
		t.Errorf("Unexpected default storage path: %s", cfg.StoragePath)
	}

	cfg = validConfig(t)
	cfg.StoragePath = ""
	cfg.Storage = StorageSQLite
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.StoragePath != filepath.Join(cfg.OutputDir, "leihschein-registry.db") {
		t.Errorf("Unexpected default storage path: %s", cfg.StoragePath)
	}

	cfg = validConfig(t)
	cfg.StoragePath = ""
	cfg.Storage = StorageNone
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.StoragePath != "" {
		t.Errorf("Expected no storage path for disabled registry, got %s", cfg.StoragePath)
	}
}

func TestConfig_IsDebug(t *testing.T) {
	cfg := validConfig(t)
	if cfg.IsDebug() {
		t.Error("info level should not report debug")
	}
	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("debug level should report debug")
	}
}

func TestConfig_String(t *testing.T) {
	cfg := validConfig(t)
	s := cfg.String()
	if !strings.Contains(s, cfg.TemplatePath) || !strings.Contains(s, cfg.Storage) {
		t.Errorf("String() should mention template path and storage backend: %s", s)
	}
}
