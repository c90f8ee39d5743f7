package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/remihome/remi-card/pkg/hasher"
)

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges the dashboard password for a signed API token. Disabled
// unless both a password hash and an api secret are configured.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	if s.cfg.APISecret == "" || s.cfg.PasswordHash == "" {
		handleError(w, http.StatusNotFound, errors.New("login disabled"))
		return
	}
	req, err := unmarshalPayload[loginRequest](r)
	if err != nil {
		handleError(w, http.StatusBadRequest, err)
		return
	}
	if !hasher.PasswordCorrect(req.Password, s.cfg.PasswordHash) {
		handleError(w, http.StatusUnauthorized, errors.New("invalid password"))
		return
	}

	token, err := IssueToken(s.cfg.APISecret, 24*time.Hour)
	if err != nil {
		handleError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// IssueToken signs a short-lived HS256 token for the API.
func IssueToken(secret string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   "remi-card",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
