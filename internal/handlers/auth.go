package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/votables/backend/internal/auth"
	"github.com/emilythestrangee/votables/backend/internal/logger"
	"github.com/emilythestrangee/votables/backend/internal/middleware"
	"github.com/emilythestrangee/votables/backend/internal/models"
	"github.com/emilythestrangee/votables/backend/internal/users"
)

type AuthHandler struct {
	users  *users.Store
	issuer *auth.Issuer
	log    *logger.Logger
}

func NewAuthHandler(userStore *users.Store, issuer *auth.Issuer, log *logger.Logger) *AuthHandler {
	return &AuthHandler{users: userStore, issuer: issuer, log: log}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	hashedPassword, err := auth.HashPassword(input.Password)
	if err != nil {
		h.log.Error("Hashing password failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("Failed to hash password"))
		return
	}

	user := models.User{
		Username: strings.TrimSpace(input.Username),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: hashedPassword,
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, users.ErrDuplicate) {
			RespondError(c, http.StatusBadRequest, "duplicate_user", errors.New("Username or email already exists"))
			return
		}
		h.log.Error("Creating user failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("Failed to create user"))
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		h.log.Error("Issuing token failed", "user_id", user.ID, "error", err)
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("Failed to generate token"))
		return
	}

	c.JSON(http.StatusCreated, models.AuthResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    user,
	})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if !errors.Is(err, users.ErrNotFound) {
			h.log.Error("Loading user failed", "error", err)
		}
		RespondError(c, http.StatusUnauthorized, "invalid_credentials", errors.New("Invalid credentials"))
		return
	}
	if !auth.CheckPassword(user.Password, input.Password) {
		RespondError(c, http.StatusUnauthorized, "invalid_credentials", errors.New("Invalid credentials"))
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		h.log.Error("Issuing token failed", "user_id", user.ID, "error", err)
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("Failed to generate token"))
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    user,
	})
}

// GetMe returns the authenticated user
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("User not authenticated"))
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "not_found", errors.New("User not found"))
			return
		}
		h.log.Error("Loading user failed", "user_id", userID, "error", err)
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("Failed to load user"))
		return
	}

	c.JSON(http.StatusOK, user)
}
