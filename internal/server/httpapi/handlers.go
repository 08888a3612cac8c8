package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/tripauth/internal/api"
	"github.com/dmitrijs2005/tripauth/internal/common"
	"github.com/dmitrijs2005/tripauth/internal/server/models"
	"github.com/dmitrijs2005/tripauth/internal/validation"
)

const maxBodyBytes = 64 << 10

type userView struct {
	PublicID  string    `json:"public_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

type response struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	User    *userView `json:"user,omitempty"`
	Token   string    `json:"token,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := s.auth.Register(r.Context(), validation.RegistrationForm{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
	})
	if err != nil {
		writeFailure(w, err, common.ErrRegistrationFailed)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, User: toView(u)})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.auth.Login(r.Context(), validation.LoginForm{Email: req.Email, Password: req.Password})
	if err != nil {
		writeFailure(w, err, common.ErrLoginFailed)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, User: toView(res.User), Token: res.Token})
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	u, err := s.auth.VerifyToken(r.Context(), bearerToken(r))
	if err != nil {
		writeFailure(w, err, common.ErrVerificationFailed)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, User: toView(u)})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), bearerToken(r)); err != nil {
		writeFailure(w, err, common.ErrLogoutFailed)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true})
}

// bearerToken returns the token of an "Authorization: Bearer <token>"
// header, or "".
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Message: "Malformed request body"})
		return false
	}
	return true
}

func writeFailure(w http.ResponseWriter, err error, fallback *common.Failure) {
	writeJSON(w, http.StatusOK, response{Message: common.AsFailure(err, fallback).Message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func toView(u *models.PublicUser) *userView {
	if u == nil {
		return nil
	}
	return &userView{
		PublicID:  u.PublicID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}
