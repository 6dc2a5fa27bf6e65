package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"9876543210", true},
		{"6000000000", true},
		{"+919876543210", true},
		{"+91 9876543210", true},
		{"98765432", false},     // too short
		{"98765432101", false},  // too long
		{"1234567890", false},   // bad leading digit
		{"5876543210", false},   // bad leading digit
		{"987654321a", false},   // non-digit
		{"", false},
		{"+91", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidPhone(tt.phone))
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "9876543210", NormalizePhone("+919876543210"))
	assert.Equal(t, "9876543210", NormalizePhone("  +91 9876543210 "))
	assert.Equal(t, "9876543210", NormalizePhone("9876543210"))
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "+919876543210", FormatPhone("9876543210"))
	assert.Equal(t, "+919876543210", FormatPhone("+919876543210"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("rahul@example.com"))
	assert.True(t, IsValidEmail("first.last+tag@sub.example.co"))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("missing@tld"))
	assert.False(t, IsValidEmail("@example.com"))
	assert.False(t, IsValidEmail(""))
}
