package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:             "8081",
		ShutdownTimeout:  30 * time.Second,
		DataBackend:      "sqlite",
		SQLiteDBPath:     "./test.db",
		LogLevel:         "info",
		MaxPhotoBytes:    10 << 20,
		PhotoJPEGQuality: 50,
		CacheTTL:         30 * time.Second,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid sqlite backend config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "valid memory backend without path",
			mutate:  func(c *Config) { c.DataBackend = "memory"; c.SQLiteDBPath = "" },
			wantErr: false,
		},
		{
			name:    "cache disabled",
			mutate:  func(c *Config) { c.CacheTTL = 0 },
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid data backend 'sheets': must be one of [memory sqlite]",
		},
		{
			name:        "sqlite backend missing database path",
			mutate:      func(c *Config) { c.SQLiteDBPath = "" },
			wantErr:     true,
			errorString: "SQLite database path cannot be empty",
		},
		{
			name:   "warning alias accepted",
			mutate: func(c *Config) { c.LogLevel = "warning" },
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
		{
			name:        "photo limit too small",
			mutate:      func(c *Config) { c.MaxPhotoBytes = 10 },
			wantErr:     true,
			errorString: "invalid max photo bytes 10",
		},
		{
			name:        "photo quality out of range",
			mutate:      func(c *Config) { c.PhotoJPEGQuality = 101 },
			wantErr:     true,
			errorString: "invalid photo JPEG quality 101: must be between 1 and 100",
		},
		{
			name:        "cache TTL too long",
			mutate:      func(c *Config) { c.CacheTTL = 2 * time.Hour },
			wantErr:     true,
			errorString: "invalid cache TTL 2h0m0s: must be at most 1 hour",
		},
		{
			name:        "shutdown timeout too short",
			mutate:      func(c *Config) { c.ShutdownTimeout = 10 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid shutdown timeout 10ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.PhotoJPEGQuality = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{"invalid port", "invalid photo JPEG quality"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestLoad(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_BACKEND", "SQLITE_DB_PATH", "LOG_LEVEL", "MAX_PHOTO_BYTES", "PHOTO_JPEG_QUALITY", "CACHE_TTL", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
	}

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.DataBackend != "sqlite" {
			t.Errorf("Load() DataBackend = %v, want sqlite", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "./data/spendingtracker.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want ./data/spendingtracker.db", cfg.SQLiteDBPath)
		}
		if cfg.MaxPhotoBytes != 10<<20 {
			t.Errorf("Load() MaxPhotoBytes = %v, want 10485760", cfg.MaxPhotoBytes)
		}
		if cfg.PhotoJPEGQuality != 50 {
			t.Errorf("Load() PhotoJPEGQuality = %v, want 50", cfg.PhotoJPEGQuality)
		}
		if cfg.CacheTTL != 30*time.Second {
			t.Errorf("Load() CacheTTL = %v, want 30s", cfg.CacheTTL)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("defaults should validate: %v", err)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DATA_BACKEND", "memory")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("PHOTO_JPEG_QUALITY", "80")
		t.Setenv("CACHE_TTL", "0s")

		cfg := Load()

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.DataBackend != "memory" {
			t.Errorf("Load() DataBackend = %v, want memory", cfg.DataBackend)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("Load() LogLevel = %v, want debug", cfg.LogLevel)
		}
		if cfg.PhotoJPEGQuality != 80 {
			t.Errorf("Load() PhotoJPEGQuality = %v, want 80", cfg.PhotoJPEGQuality)
		}
		if cfg.CacheTTL != 0 {
			t.Errorf("Load() CacheTTL = %v, want 0", cfg.CacheTTL)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		t.Setenv("PHOTO_JPEG_QUALITY", "high")
		t.Setenv("SHUTDOWN_TIMEOUT", "soon")

		cfg := Load()

		if cfg.PhotoJPEGQuality != 50 {
			t.Errorf("Load() PhotoJPEGQuality = %v, want 50 (default for invalid input)", cfg.PhotoJPEGQuality)
		}
		if cfg.ShutdownTimeout != 30*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 30s (default for invalid input)", cfg.ShutdownTimeout)
		}
	})
}
