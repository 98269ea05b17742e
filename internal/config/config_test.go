package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_WithDefaults(t *testing.T) {
	t.Setenv("NAVLOG_URL", "http://navlog.test")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if config.NavLogURL != "http://navlog.test" {
		t.Errorf("Expected NavLogURL = http://navlog.test, got %s", config.NavLogURL)
	}
	if config.CourseURL != config.NavLogURL {
		t.Errorf("Expected CourseURL to default to NavLogURL, got %s", config.CourseURL)
	}
	if config.DragDebounce != 500*time.Millisecond {
		t.Errorf("Expected default DragDebounce = 500ms, got %s", config.DragDebounce)
	}
	if config.LogLevel != "info" {
		t.Errorf("Expected default LogLevel = info, got %s", config.LogLevel)
	}
	if config.LogDir != "./logs" {
		t.Errorf("Expected default LogDir = ./logs, got %s", config.LogDir)
	}
	if config.CourseRateLimit != 60 {
		t.Errorf("Expected default CourseRateLimit = 60, got %d", config.CourseRateLimit)
	}
	if config.NatsURL != "nats://localhost:4222" {
		t.Errorf("Unexpected default NatsURL %s", config.NatsURL)
	}
}

func TestLoad_WithOverrides(t *testing.T) {
	t.Setenv("NAVLOG_URL", "http://navlog.test")
	t.Setenv("COURSE_URL", "http://course.test")
	t.Setenv("NATS_URL", "nats://nats:4222")
	t.Setenv("DB_CONN_STR", "postgres://u:p@db/flights")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("API_KEY", "secret")
	t.Setenv("GOOGLE_MAPS_API_KEY", "maps-key")
	t.Setenv("DRAG_DEBOUNCE", "250ms")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_DIR", "/var/log/planner")
	t.Setenv("COURSE_RATE_LIMIT", "120")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	checks := map[string][2]string{
		"CourseURL":        {config.CourseURL, "http://course.test"},
		"NatsURL":          {config.NatsURL, "nats://nats:4222"},
		"DBConnStr":        {config.DBConnStr, "postgres://u:p@db/flights"},
		"RedisAddr":        {config.RedisAddr, "redis:6379"},
		"APIKey":           {config.APIKey, "secret"},
		"GoogleMapsAPIKey": {config.GoogleMapsAPIKey, "maps-key"},
		"LogLevel":         {config.LogLevel, "debug"},
		"LogDir":           {config.LogDir, "/var/log/planner"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("Expected %s = %s, got %s", name, c[1], c[0])
		}
	}
	if config.DragDebounce != 250*time.Millisecond {
		t.Errorf("Expected DragDebounce = 250ms, got %s", config.DragDebounce)
	}
	if config.CourseRateLimit != 120 {
		t.Errorf("Expected CourseRateLimit = 120, got %d", config.CourseRateLimit)
	}
}

func TestLoad_WithMissingNavLogURL(t *testing.T) {
	t.Setenv("NAVLOG_URL", "")

	config, err := Load()
	if err == nil {
		t.Fatal("Load() should have failed with missing NAVLOG_URL")
	}
	if config != nil {
		t.Fatal("Load() should have returned nil config")
	}

	expectedError := "NAVLOG_URL environment variable is required"
	if err.Error() != expectedError {
		t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unparseable debounce", "DRAG_DEBOUNCE", "soon"},
		{"negative debounce", "DRAG_DEBOUNCE", "-1s"},
		{"unparseable rate", "COURSE_RATE_LIMIT", "many"},
		{"zero rate", "COURSE_RATE_LIMIT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NAVLOG_URL", "http://navlog.test")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() should fail for %s=%s", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("Expected error to name %s, got %v", tt.key, err)
			}
		})
	}
}
