package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nextgenfitness/backend/internal/auth"
	"github.com/nextgenfitness/backend/internal/store"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     *int   `json:"role"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	role := 1
	if req.Role != nil {
		role = *req.Role
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	user, err := s.store.CreateUser(r.Context(), req.Username, req.Email, hash, role)
	switch {
	case errors.Is(err, store.ErrDuplicateUsername):
		writeError(w, http.StatusConflict, "Username already exists")
		return
	case errors.Is(err, store.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "Email already registered")
		return
	case err != nil:
		s.logger.Error("failed to create user", "error", err)
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	s.logger.Info("user registered", "user_id", user.UserID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user_id": user.UserID,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Unknown user and wrong password answer identically.
	user, err := s.store.UserByUsername(r.Context(), req.Username)
	if err != nil || !auth.CheckPassword(user.Password, req.Password) {
		if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
			s.logger.Error("failed to look up user", "error", err)
		}
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Login successful"})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err := s.store.UserByEmail(r.Context(), req.Email)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "Email not found")
		return
	case err != nil:
		s.logger.Error("failed to look up email", "error", err)
		writeError(w, http.StatusInternalServerError, "Lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Email found"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Email and new password are required")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "Password reset failed")
		return
	}

	err = s.store.UpdatePassword(r.Context(), req.Email, hash)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "Email not found")
		return
	case err != nil:
		s.logger.Error("failed to update password", "error", err)
		writeError(w, http.StatusInternalServerError, "Password reset failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "Password has been successfully updated"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
