package user_models

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/argon2"

	"github.com/dreamevents/marketplace/logger"
	"github.com/dreamevents/marketplace/models/shared_models"
)

// Argon2 parameters.
const (
	Memory      = 64 * 1024
	Iterations  = 3
	Parallelism = 4
	SaltLength  = 16
	KeyLength   = 64
)

var ErrUserNotFound = errors.New("user not found")

// User is an identity record with a marketplace role and the notification
// preferences consumed by the dispatcher.
type User struct {
	ID                   uuid.UUID  `json:"id"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	Phone                string     `json:"phone,omitempty"`
	PasswordHash         string     `json:"-"`
	Role                 string     `json:"role"` // customer | vendor | admin
	ProfileComplete      bool       `json:"profile_complete"`
	NotificationsEnabled bool       `json:"notifications_enabled"`
	PushToken            *string    `json:"-"`
	UnreadNotifications  int        `json:"unread_notifications"`
	LastNotificationAt   *time.Time `json:"last_notification_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// NewUser creates a new User struct with a fresh UUIDv7.
func NewUser(name, email, passwordHash, role string) (*User, error) {
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for user: %w", err)
	}
	now := time.Now()
	return &User{
		ID:                   id,
		Name:                 name,
		Email:                strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:         passwordHash,
		Role:                 role,
		NotificationsEnabled: true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

func generateSalt(size int) ([]byte, error) {
	salt := make([]byte, size)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// HashPassword hashes a password using Argon2id.
func HashPassword(password string) (string, error) {
	salt, err := generateSalt(SaltLength)
	if err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, Iterations, Memory, uint8(Parallelism), KeyLength)

	saltBase64 := base64.RawStdEncoding.EncodeToString(salt)
	hashBase64 := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("%s$%s", saltBase64, hashBase64), nil
}

// VerifyPassword verifies a password against a stored hash.
func VerifyPassword(password, storedHash string) (bool, error) {
	parts := strings.Split(storedHash, "$")
	if len(parts) != 2 {
		return false, errors.New("invalid stored hash format")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[0])
	if err != nil {
		return false, err
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return false, err
	}

	computedHash := argon2.IDKey([]byte(password), salt, Iterations, Memory, uint8(Parallelism), KeyLength)
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1, nil
}

const userColumns = `id, name, email, phone, password_hash, role, profile_complete,
	notifications_enabled, push_token, unread_notifications, last_notification_at,
	created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Role,
		&user.ProfileComplete,
		&user.NotificationsEnabled,
		&user.PushToken,
		&user.UnreadNotifications,
		&user.LastNotificationAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return user, nil
}

// CreateUser inserts a new user record into the database.
func CreateUser(ctx context.Context, db *pgxpool.Pool, user *User) (*User, error) {
	logger.InfoLogger.Infof("Attempting to create user record for email: %s", user.Email)

	query := `
		INSERT INTO users (
			id, name, email, phone, password_hash, role, profile_complete,
			notifications_enabled, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING id`

	var insertedID uuid.UUID
	err := db.QueryRow(ctx, query,
		user.ID, user.Name, user.Email, user.Phone, user.PasswordHash, user.Role,
		user.ProfileComplete, user.NotificationsEnabled, user.CreatedAt, user.UpdatedAt,
	).Scan(&insertedID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert user %s: %v", user.Email, err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = insertedID
	logger.InfoLogger.Infof("User %s created successfully", user.ID)
	return user, nil
}

// GetUserByID fetches a user record by its ID.
func GetUserByID(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	user, err := scanUser(db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			logger.WarnLogger.Warnf("User with ID %s not found", userID)
		}
		return nil, err
	}
	return user, nil
}

// GetUserByEmail fetches a user record by email.
func GetUserByEmail(ctx context.Context, db *pgxpool.Pool, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return scanUser(db.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// UpdatePushToken stores or clears the user's push-delivery token.
func UpdatePushToken(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID, token *string) error {
	cmdTag, err := db.Exec(ctx,
		`UPDATE users SET push_token = $2, updated_at = $3 WHERE id = $1`,
		userID, token, time.Now())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update push token for user %s: %v", userID, err)
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetNotificationsEnabled toggles the user's notification preference.
func SetNotificationsEnabled(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID, enabled bool) error {
	cmdTag, err := db.Exec(ctx,
		`UPDATE users SET notifications_enabled = $2, updated_at = $3 WHERE id = $1`,
		userID, enabled, time.Now())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update notification preference for user %s: %v", userID, err)
		return fmt.Errorf("failed to update notification preference: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// IncrementUnreadNotifications bumps the recipient's unread counter and stamps
// the last notification time.
func IncrementUnreadNotifications(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) error {
	cmdTag, err := db.Exec(ctx, `
		UPDATE users
		SET unread_notifications = unread_notifications + 1,
			last_notification_at = $2
		WHERE id = $1`,
		userID, time.Now())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to increment unread notifications for user %s: %v", userID, err)
		return fmt.Errorf("failed to increment unread notifications: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ResetUnreadNotifications clears the unread counter, used when the recipient
// opens their inbox.
func ResetUnreadNotifications(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) error {
	_, err := db.Exec(ctx,
		`UPDATE users SET unread_notifications = 0 WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to reset unread notifications: %w", err)
	}
	return nil
}

// MarkProfileComplete flags the profile as complete once required fields are
// filled in.
func MarkProfileComplete(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID, phone string) error {
	cmdTag, err := db.Exec(ctx, `
		UPDATE users
		SET phone = $2, profile_complete = TRUE, updated_at = $3
		WHERE id = $1`,
		userID, phone, time.Now())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to mark profile complete for user %s: %v", userID, err)
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
