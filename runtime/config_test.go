package runtime

import (
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
)

type BasicConfig struct {
	Name    string `yaml:"name" default:"default-name"`
	Port    int    `yaml:"port" default:"8080"`
	Enabled bool   `yaml:"enabled" default:"true"`
}

type DurationConfig struct {
	Timeout       time.Duration `yaml:"timeout" default:"30s"`
	RetryInterval time.Duration `yaml:"retry_interval" default:"5m"`
}

type NodeConfig struct {
	BaseURL   string        `yaml:"base_url" default:"https://api.example.com/v1" validate:"required,url_format"`
	Timeout   time.Duration `yaml:"timeout" default:"30s" validate:"gte=1s"`
	RateLimit float64       `yaml:"rate_limit" default:"0" validate:"gte=0"`
	RateBurst int           `yaml:"rate_burst" default:"1" validate:"gte=1,lte=100"`
	Level     string        `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
}

type URLValidatorConfig struct {
	URL string `validate:"url_format"`
}

type EndpointValidatorConfig struct {
	Endpoint string `validate:"endpoint_path"`
}

type SendParams struct {
	Campaign string `json:"campaign" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Notify   bool   `json:"notify" default:"true"`
	Limit    int    `json:"limit" default:"500" validate:"gte=1,lte=1000"`
}

// Tests for ApplyDefaults

func TestApplyDefaults_BasicTypes(t *testing.T) {
	config := BasicConfig{}

	err := ApplyDefaults(&config)
	if err != nil {
		t.Fatalf("ApplyDefaults failed: %v", err)
	}

	if config.Name != "default-name" {
		t.Errorf("Expected Name='default-name', got '%s'", config.Name)
	}
	if config.Port != 8080 {
		t.Errorf("Expected Port=8080, got %d", config.Port)
	}
	if !config.Enabled {
		t.Errorf("Expected Enabled=true, got false")
	}
}

func TestApplyDefaults_Durations(t *testing.T) {
	config := DurationConfig{}

	if err := ApplyDefaults(&config); err != nil {
		t.Fatalf("ApplyDefaults failed: %v", err)
	}

	if config.Timeout != 30*time.Second {
		t.Errorf("Expected Timeout=30s, got %v", config.Timeout)
	}
	if config.RetryInterval != 5*time.Minute {
		t.Errorf("Expected RetryInterval=5m, got %v", config.RetryInterval)
	}
}

func TestApplyDefaults_NonZeroValuesUnchanged(t *testing.T) {
	config := BasicConfig{Name: "custom-name", Port: 9000}

	if err := ApplyDefaults(&config); err != nil {
		t.Fatalf("ApplyDefaults failed: %v", err)
	}

	if config.Name != "custom-name" {
		t.Errorf("Expected Name='custom-name', got '%s'", config.Name)
	}
	if config.Port != 9000 {
		t.Errorf("Expected Port=9000, got %d", config.Port)
	}
}

func TestApplyDefaults_NilConfig(t *testing.T) {
	if err := ApplyDefaults(nil); err == nil {
		t.Error("Expected error for nil config, got nil")
	}
}

// Tests for InitializeConfig

func TestInitializeConfig_Defaults(t *testing.T) {
	config := NodeConfig{}

	if err := InitializeConfig(&config, nil); err != nil {
		t.Fatalf("InitializeConfig failed: %v", err)
	}

	if config.BaseURL != "https://api.example.com/v1" {
		t.Errorf("Expected default BaseURL, got '%s'", config.BaseURL)
	}
	if config.Timeout != 30*time.Second {
		t.Errorf("Expected Timeout=30s, got %v", config.Timeout)
	}
	if config.RateBurst != 1 {
		t.Errorf("Expected RateBurst=1, got %d", config.RateBurst)
	}
}

func TestInitializeConfig_RawValuesOverrideDefaults(t *testing.T) {
	config := NodeConfig{}

	err := InitializeConfig(&config, map[string]any{
		"base_url":   "http://localhost:9999",
		"timeout":    "5s",
		"rate_limit": 2.5,
		"rate_burst": "3", // weakly typed
	})
	if err != nil {
		t.Fatalf("InitializeConfig failed: %v", err)
	}

	if config.BaseURL != "http://localhost:9999" {
		t.Errorf("Expected overridden BaseURL, got '%s'", config.BaseURL)
	}
	if config.Timeout != 5*time.Second {
		t.Errorf("Expected Timeout=5s, got %v", config.Timeout)
	}
	if config.RateLimit != 2.5 {
		t.Errorf("Expected RateLimit=2.5, got %v", config.RateLimit)
	}
	if config.RateBurst != 3 {
		t.Errorf("Expected RateBurst=3, got %d", config.RateBurst)
	}
	if config.Level != "info" {
		t.Errorf("Expected default Level, got '%s'", config.Level)
	}
}

func TestInitializeConfig_EnvReferences(t *testing.T) {
	t.Setenv("CM_TEST_BASE_URL", "https://cm.internal/api")

	config := NodeConfig{}
	err := InitializeConfig(&config, map[string]any{
		"base_url": "${CM_TEST_BASE_URL}",
		"level":    "${CM_TEST_UNSET_LEVEL:debug}",
	})
	if err != nil {
		t.Fatalf("InitializeConfig failed: %v", err)
	}

	if config.BaseURL != "https://cm.internal/api" {
		t.Errorf("Expected BaseURL from env, got '%s'", config.BaseURL)
	}
	if config.Level != "debug" {
		t.Errorf("Expected Level from env default, got '%s'", config.Level)
	}
}

func TestInitializeConfig_MissingEnv(t *testing.T) {
	config := NodeConfig{}
	err := InitializeConfig(&config, map[string]any{"base_url": "${CM_TEST_DEFINITELY_UNSET}"})
	if err == nil || !strings.Contains(err.Error(), "CM_TEST_DEFINITELY_UNSET") {
		t.Errorf("Expected missing env error, got %v", err)
	}
}

func TestInitializeConfig_ValidationFails(t *testing.T) {
	tests := []struct {
		name   string
		raw    map[string]any
		inMsg  string
		inRule string
	}{
		{"bad url", map[string]any{"base_url": "not-a-url"}, "base_url", "url_format"},
		{"short timeout", map[string]any{"timeout": "100ms"}, "timeout", "gte"},
		{"burst too large", map[string]any{"rate_burst": 500}, "rate_burst", "lte"},
		{"unknown level", map[string]any{"level": "trace"}, "level", "oneof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NodeConfig{}
			err := InitializeConfig(&config, tt.raw)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), "validation") ||
				!strings.Contains(err.Error(), "'"+tt.inMsg+"'") ||
				!strings.Contains(err.Error(), tt.inRule) {
				t.Errorf("Expected error naming field %s and rule %s, got: %v", tt.inMsg, tt.inRule, err)
			}
		})
	}
}

func TestInitializeConfig_NilConfig(t *testing.T) {
	if err := InitializeConfig(nil, nil); err == nil {
		t.Error("Expected error for nil config, got nil")
	}
}

// Tests for custom validators

func TestCustomValidator_URLFormat(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		shouldErr bool
	}{
		{"valid HTTP", "http://example.com", false},
		{"valid HTTPS", "https://api.createsend.com/api/v3.2", false},
		{"valid with port", "https://example.com:8080", false},
		{"invalid no scheme", "example.com", true},
		{"invalid no host", "http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateStruct(URLValidatorConfig{URL: tt.url})
			if tt.shouldErr && err == nil {
				t.Errorf("Expected validation error for '%s', got nil", tt.url)
			}
			if !tt.shouldErr && err != nil {
				t.Errorf("Expected no error for '%s', got: %v", tt.url, err)
			}
		})
	}
}

func TestCustomValidator_EndpointPath(t *testing.T) {
	tests := []struct {
		endpoint  string
		shouldErr bool
	}{
		{"/clients.json", false},
		{"/lists/abc/active.json", false},
		{"clients.json", true},
		{"", true},
	}

	for _, tt := range tests {
		err := validateStruct(EndpointValidatorConfig{Endpoint: tt.endpoint})
		if tt.shouldErr != (err != nil) {
			t.Errorf("endpoint %q: shouldErr=%v, got %v", tt.endpoint, tt.shouldErr, err)
		}
	}
}

func TestRegisterCustomValidator(t *testing.T) {
	type ListIDConfig struct {
		List string `validate:"list_id"`
	}

	err := RegisterCustomValidator("list_id", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) == 32
	})
	if err != nil {
		t.Fatalf("RegisterCustomValidator failed: %v", err)
	}

	if err := validateStruct(ListIDConfig{List: strings.Repeat("a", 32)}); err != nil {
		t.Errorf("Expected valid list id, got %v", err)
	}
	if err := validateStruct(ListIDConfig{List: "short"}); err == nil {
		t.Error("Expected invalid list id error, got nil")
	}
}

// Tests for DecodeParameters

func TestDecodeParameters(t *testing.T) {
	var params SendParams
	err := DecodeParameters(map[string]any{
		"campaign": "abc",
		"email":    "a@example.com",
		"limit":    "20",
		"unused":   true,
	}, &params)
	if err != nil {
		t.Fatalf("DecodeParameters failed: %v", err)
	}

	if params.Campaign != "abc" || params.Email != "a@example.com" {
		t.Errorf("Unexpected params: %+v", params)
	}
	if !params.Notify {
		t.Error("Expected default Notify=true")
	}
	if params.Limit != 20 {
		t.Errorf("Expected Limit=20, got %d", params.Limit)
	}
}

func TestDecodeParameters_ExplicitFalseWinsOverDefault(t *testing.T) {
	var params SendParams
	err := DecodeParameters(map[string]any{"campaign": "abc", "email": "a@example.com", "notify": false}, &params)
	if err != nil {
		t.Fatalf("DecodeParameters failed: %v", err)
	}
	if params.Notify {
		t.Error("Expected Notify=false")
	}
}

func TestDecodeParameters_Validation(t *testing.T) {
	var params SendParams
	err := DecodeParameters(map[string]any{"campaign": "abc"}, &params)
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "field 'email' failed validation (rule: required)") {
		t.Errorf("Unexpected error: %v", err)
	}
}

// Benchmark tests

func BenchmarkApplyDefaults(b *testing.B) {
	for i := 0; i < b.N; i++ {
		config := NodeConfig{}
		ApplyDefaults(&config)
	}
}

func BenchmarkInitializeConfig(b *testing.B) {
	raw := map[string]any{"base_url": "http://localhost:9999", "timeout": "5s"}
	for i := 0; i < b.N; i++ {
		config := NodeConfig{}
		InitializeConfig(&config, raw)
	}
}
