package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vision4k/vision4k-backend/config"
	"github.com/vision4k/vision4k-backend/models"
	"github.com/vision4k/vision4k-backend/repository"
)

type AuthHandler struct {
	UserRepo repository.UserRepositoryInterface
	Cfg      config.Config
}

func NewAuthHandler(userRepo repository.UserRepositoryInterface, cfg config.Config) *AuthHandler {
	return &AuthHandler{UserRepo: userRepo, Cfg: cfg}
}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (h *AuthHandler) issueToken(user *models.User) (string, time.Time, error) {
	expirationTime := time.Now().Add(time.Duration(h.Cfg.JWTExpirationHours) * time.Hour)
	claims := &jwt.RegisteredClaims{
		Subject:   fmt.Sprint(user.ID),
		ExpiresAt: jwt.NewNumericDate(expirationTime),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    "vision4k",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(h.Cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expirationTime, nil
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return
	}

	user, err := h.UserRepo.GetByEmail(strings.ToLower(strings.TrimSpace(payload.Email)))
	if err != nil {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "invalid email or password")
		return
	}

	if !user.CheckPassword(payload.Password) {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "invalid email or password")
		return
	}

	tokenString, expiresAt, err := h.issueToken(user)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to generate token")
		return
	}

	userForResponse := *user
	userForResponse.PasswordHash = ""

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     tokenString,
		User:      userForResponse,
		ExpiresAt: expiresAt,
	})
}

type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return
	}

	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if payload.Name == "" || payload.Email == "" || payload.Password == "" {
		WriteAPIError(w, http.StatusBadRequest, "bad_request", "name, email, and password are required")
		return
	}
	if len(payload.Password) < 8 {
		WriteValidationErrors(w, []APIErrorDetail{{Field: "password", Detail: "password must be at least 8 characters"}})
		return
	}

	if _, err := h.UserRepo.GetByEmail(payload.Email); err == nil {
		WriteValidationErrors(w, []APIErrorDetail{{Field: "email", Detail: "email already exists"}})
		return
	}

	user := models.User{
		Name:               payload.Name,
		Email:              payload.Email,
		Role:               models.RoleUser,
		DailyDownloadLimit: h.Cfg.DailyDownloadLimit,
		DownloadsResetAt:   time.Now(),
	}
	if err := user.SetPassword(payload.Password); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to hash password")
		return
	}

	if err := h.UserRepo.Create(&user); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to create user")
		return
	}

	tokenString, expiresAt, err := h.issueToken(&user)
	if err != nil {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to generate token")
		return
	}

	user.PasswordHash = ""
	writeJSON(w, http.StatusCreated, LoginResponse{
		Token:     tokenString,
		User:      user,
		ExpiresAt: expiresAt,
	})
}
