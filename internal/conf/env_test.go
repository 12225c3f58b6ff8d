package conf

import (
	"testing"
)

func TestValidateEnvMode(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"direct", false},
		{"remote", false},
		{"DIRECT", true},
		{"proxy", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := validateEnvMode(tt.value)
			if tt.wantErr && err == nil {
				t.Errorf("validateEnvMode(%q) expected error, got nil", tt.value)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validateEnvMode(%q) unexpected error: %v", tt.value, err)
			}
		})
	}
}

func TestValidateEnvEngine(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"sqlite", false},
		{"mysql", false},
		{"postgres", true},
		{"sqlite3", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := validateEnvEngine(tt.value)
			if tt.wantErr && err == nil {
				t.Errorf("validateEnvEngine(%q) expected error, got nil", tt.value)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validateEnvEngine(%q) unexpected error: %v", tt.value, err)
			}
		})
	}
}

func TestValidateEnvPort(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"1", false},
		{"3306", false},
		{"65535", false},
		{"0", true},
		{"65536", true},
		{"-1", true},
		{"http", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := validateEnvPort(tt.value)
			if tt.wantErr && err == nil {
				t.Errorf("validateEnvPort(%q) expected error, got nil", tt.value)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validateEnvPort(%q) unexpected error: %v", tt.value, err)
			}
		})
	}
}

func TestValidateEnvURL(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"http://localhost:8080", false},
		{"https://projtrack.example.com", false},
		{"ftp://localhost", true},
		{"localhost:8080", true},
		{"http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := validateEnvURL(tt.value)
			if tt.wantErr && err == nil {
				t.Errorf("validateEnvURL(%q) expected error, got nil", tt.value)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validateEnvURL(%q) unexpected error: %v", tt.value, err)
			}
		})
	}
}

func TestValidateEnvBool(t *testing.T) {
	valid := []string{"true", "false", "1", "0", "t", "f", "TRUE", "FALSE"}
	for _, v := range valid {
		if err := validateEnvBool(v); err != nil {
			t.Errorf("validateEnvBool(%q) unexpected error: %v", v, err)
		}
	}

	invalid := []string{"yes", "no", "on", ""}
	for _, v := range invalid {
		if err := validateEnvBool(v); err == nil {
			t.Errorf("validateEnvBool(%q) expected error, got nil", v)
		}
	}
}

func TestEnvBindingsAreUnique(t *testing.T) {
	seenKeys := make(map[string]bool)
	seenVars := make(map[string]bool)

	for _, b := range getEnvBindings() {
		if seenKeys[b.ConfigKey] {
			t.Errorf("duplicate config key binding: %s", b.ConfigKey)
		}
		if seenVars[b.EnvVar] {
			t.Errorf("duplicate environment variable binding: %s", b.EnvVar)
		}
		seenKeys[b.ConfigKey] = true
		seenVars[b.EnvVar] = true
	}
}
