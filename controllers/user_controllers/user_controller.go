package user_controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dreamevents/marketplace/logger"
	"github.com/dreamevents/marketplace/models/shared_models"
	"github.com/dreamevents/marketplace/models/user_models"
	"github.com/dreamevents/marketplace/utils"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// UserController handles registration, login and profile operations.
type UserController struct {
	DB *pgxpool.Pool
}

// NewUserController creates a new instance of UserController.
func NewUserController(db *pgxpool.Pool) *UserController {
	return &UserController{DB: db}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=customer vendor"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type PushTokenRequest struct {
	Token *string `json:"token"`
}

type NotificationsEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type CompleteProfileRequest struct {
	Phone string `json:"phone" binding:"required"`
}

func userFromContext(c *gin.Context) (uuid.UUID, bool) {
	id, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}
	return id, true
}

// Register creates a user account with a customer or vendor role.
func (uc *UserController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !utils.IsValidEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	}

	ctx := c.Request.Context()
	if _, err := user_models.GetUserByEmail(ctx, uc.DB, strings.ToLower(req.Email)); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	} else if !errors.Is(err, user_models.ErrUserNotFound) {
		logger.ErrorLogger.Errorf("Failed to check existing email: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	hash, err := user_models.HashPassword(req.Password)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	user, err := user_models.NewUser(req.Name, req.Email, hash, req.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	created, err := user_models.CreateUser(ctx, uc.DB, user)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	accessToken, err := shared_models.GenerateAccessToken(created.ID, created.Role, accessTokenTTL)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to generate access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}
	refreshToken, _, err := shared_models.GenerateRefreshToken(created.ID, created.Role, refreshTokenTTL)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to generate refresh token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "Account created successfully",
		"user":          created,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Login verifies credentials and issues a token pair.
func (uc *UserController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	user, err := user_models.GetUserByEmail(ctx, uc.DB, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, user_models.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to look up user for login: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	valid, err := user_models.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	accessToken, err := shared_models.GenerateAccessToken(user.ID, user.Role, accessTokenTTL)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to generate access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}
	refreshToken, _, err := shared_models.GenerateRefreshToken(user.ID, user.Role, refreshTokenTTL)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to generate refresh token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	logger.InfoLogger.Infof("User %s logged in", user.ID)
	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// GetProfile returns the caller's own profile.
func (uc *UserController) GetProfile(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}

	user, err := user_models.GetUserByID(c.Request.Context(), uc.DB, userID)
	if err != nil {
		if errors.Is(err, user_models.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RegisterPushToken stores or clears the caller's device push token.
func (uc *UserController) RegisterPushToken(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}

	var req PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := user_models.UpdatePushToken(c.Request.Context(), uc.DB, userID, req.Token); err != nil {
		logger.ErrorLogger.Errorf("Failed to update push token for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update push token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Push token updated"})
}

// SetNotificationsEnabled toggles notification delivery for the caller.
func (uc *UserController) SetNotificationsEnabled(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}

	var req NotificationsEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := user_models.SetNotificationsEnabled(c.Request.Context(), uc.DB, userID, *req.Enabled); err != nil {
		logger.ErrorLogger.Errorf("Failed to update notification preference for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification preference"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification preference updated"})
}

// CompleteProfile records the caller's phone number and marks the profile
// complete. Bookings require a complete profile.
func (uc *UserController) CompleteProfile(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}

	var req CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	phone := utils.NormalizePhone(req.Phone)
	if !utils.IsValidPhone(phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
		return
	}

	if err := user_models.MarkProfileComplete(c.Request.Context(), uc.DB, userID, phone); err != nil {
		logger.ErrorLogger.Errorf("Failed to complete profile for %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile completed"})
}
