package handlers

import (
	"strings"
	"testing"
)

func TestValidOption(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantError bool
	}{
		{"size", "900×900", false},
		{"finish", "Lappato", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"too long", strings.Repeat("a", 41), true},
		{"comma", "Matte, Glossy", true},
		{"markup", "<b>", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validOption(tt.value)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateContact(t *testing.T) {
	tests := []struct {
		name      string
		cname     string
		email     string
		message   string
		wantError bool
	}{
		{"valid", "Ana", "ana@example.com", "Hello", false},
		{"empty name", " ", "ana@example.com", "Hello", true},
		{"name too long", strings.Repeat("a", 201), "ana@example.com", "Hello", true},
		{"bad email", "Ana", "ana@", "Hello", true},
		{"display name form", "Ana", "Ana <ana@example.com>", "Hello", true},
		{"empty message", "Ana", "ana@example.com", "", true},
		{"message too long", "Ana", "ana@example.com", strings.Repeat("a", 5001), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateContact(tt.cname, tt.email, tt.message)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestValidateUser(t *testing.T) {
	tests := []struct {
		name      string
		display   string
		email     string
		password  string
		role      string
		wantError bool
	}{
		{"valid editor", "Ed", "ed@atelier.local", "password1", "editor", false},
		{"valid admin", "Ad", "ad@atelier.local", "password1", "admin", false},
		{"missing name", "", "ed@atelier.local", "password1", "editor", true},
		{"short password", "Ed", "ed@atelier.local", "short", "editor", true},
		{"unknown role", "Ed", "ed@atelier.local", "password1", "owner", true},
		{"missing email", "Ed", "", "password1", "editor", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateUser(tt.display, tt.email, tt.password, tt.role)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}
