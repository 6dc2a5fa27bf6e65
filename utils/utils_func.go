package utils

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/dreamevents/marketplace/config"
)

func init() {
	config.LoadEnv()
}

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Println("WARNING: JWT_SECRET environment variable not set.")
		return []byte("default-insecure-secret-only-for-development")
	}
	return []byte(secret)
}

func GetJWTRefreshSecret() []byte {
	secret := os.Getenv("JWT_SECRET_REFRESH")
	if secret == "" {
		fmt.Println("WARNING: JWT_SECRET_REFRESH environment variable not set.")
		return []byte("default-insecure-refresh-secret-only-for-development")
	}
	return []byte(secret)
}

// Indian mobile numbers: 10 digits, first digit 6-9, after the +91 country
// code prefix has been stripped.
var (
	phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

const phoneCountryCode = "+91"

// NormalizePhone strips the fixed country-code prefix and surrounding spaces.
func NormalizePhone(phone string) string {
	p := strings.TrimSpace(phone)
	p = strings.TrimPrefix(p, phoneCountryCode)
	return strings.TrimSpace(p)
}

// IsValidPhone reports whether phone is a valid local subscriber number once
// the country code is stripped.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(NormalizePhone(phone))
}

// FormatPhone returns the canonical stored form with the country code applied.
func FormatPhone(phone string) string {
	return phoneCountryCode + NormalizePhone(phone)
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}
