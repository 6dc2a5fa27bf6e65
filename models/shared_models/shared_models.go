package shared_models

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dreamevents/marketplace/logger"
	"github.com/dreamevents/marketplace/utils"
	"github.com/dreamevents/marketplace/utils/shared_utils"
)

// Booking status values. A booking starts pending and is moved exactly once by
// the owning vendor to confirmed or cancelled; completed is written by a
// separate fulfilment process.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// User roles.
const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"
)

// Service status values.
const (
	ServiceStatusActive   = "active"
	ServiceStatusInactive = "inactive"
)

// Notification types. These tag the closed set of notification payload
// variants carried on a notification record.
const (
	NotificationTypeBookingRequested = "booking_request"
	NotificationTypeBookingConfirmed = "booking_confirmed"
	NotificationTypeBookingCancelled = "booking_cancelled"
)

// Notification priorities.
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

const (
	REFRESH_TOKEN_EXPIRY = time.Hour * 24 * 30
	ACCESS_TOKEN_EXPIRY  = time.Hour * 1
)

// GenerateUUIDv7 generates a new UUIDv7.
func GenerateUUIDv7() (uuid.UUID, error) {
	return uuid.NewV7()
}

// Claims represents the JWT claims carried on access and refresh tokens.
type Claims struct {
	UserID uuid.UUID `json:"sub"`
	Role   string    `json:"role"`
	Type   string    `json:"type"`
	jwt.RegisteredClaims
}

// GenerateAccessToken creates a signed access token embedding the user's role.
func GenerateAccessToken(userID uuid.UUID, role string, duration time.Duration) (string, error) {
	now := time.Now()

	jti, err := shared_utils.GenerateTinyID(12)
	if err != nil {
		return "", fmt.Errorf("failed to generate jti: %w", err)
	}

	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(duration).Unix(),
		"nbf":  now.Unix(),
		"jti":  jti,
		"type": "access",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(utils.GetJWTSecret())
	if err != nil {
		logger.ErrorLogger.Errorf("failed to sign access token: %v", err)
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// GenerateRefreshToken creates a signed refresh token and returns it together
// with its jti.
func GenerateRefreshToken(userID uuid.UUID, role string, duration time.Duration) (string, string, error) {
	now := time.Now()

	jti, err := shared_utils.GenerateTinyID(12)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate jti: %w", err)
	}

	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(duration).Unix(),
		"nbf":  now.Unix(),
		"jti":  jti,
		"type": "refresh",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(utils.GetJWTRefreshSecret())
	if err != nil {
		logger.ErrorLogger.Errorf("failed to sign refresh token: %v", err)
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return tokenString, jti, nil
}

// ParseAccessToken parses and validates an access token string.
func ParseAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30*time.Second),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return utils.GetJWTSecret(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("invalid token: user ID missing")
	}
	if claims.Type != "access" {
		return nil, fmt.Errorf("invalid token: type mismatch")
	}

	return claims, nil
}
