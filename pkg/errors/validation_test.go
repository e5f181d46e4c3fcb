package errors

import (
	"strings"
	"testing"
)

func TestValidateTraceName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "android-boot", false},
		{"valid with dots", "trace.2024.01", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"control character", "trace\x01name", true},
		{"path separator", "traces/boot", true},
		{"backslash", `traces\boot`, true},
		{"traversal", "..secret", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTraceName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTraceName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTracePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid relative", "traces/boot.json", false},
		{"valid absolute", "/var/traces/boot.json", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"null byte", "trace\x00.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTracePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
