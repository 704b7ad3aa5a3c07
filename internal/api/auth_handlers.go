package api

import (
	"net/http"

	"github.com/vytor/quizflash/internal/logger"
	"github.com/vytor/quizflash/internal/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type authResponse struct {
	Token   string          `json:"token,omitempty"`
	User    *models.User    `json:"user"`
	Profile *models.Profile `json:"profile,omitempty"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	user, err := s.Auth.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}

	// The profile is also created lazily, so a failure here is not fatal.
	profile, err := s.ProfileService.GetOrCreate(r.Context(), *user)
	if err != nil {
		log.Warn("failed to create profile at signup: %v", err)
	}
	writeJSON(w, r, http.StatusCreated, authResponse{User: user, Profile: profile})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	token, user, err := s.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}
	profile, err := s.ProfileService.GetOrCreate(r.Context(), *user)
	if err != nil {
		handleError(w, r, err)
		return
	}

	s.setSessionCookie(w, token)
	writeJSON(w, r, http.StatusOK, authResponse{Token: token, User: user, Profile: profile})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.SignOut(r.Context(), tokenFromContext(r.Context())); err != nil {
		handleError(w, r, err)
		return
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	profile, err := s.ProfileService.GetOrCreate(r.Context(), *user)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, authResponse{User: user, Profile: profile})
}
