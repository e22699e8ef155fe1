package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akormin/logoorder/internal/models"
)

type AuthService interface {
	// Login checks the operator credentials and returns a session token
	Login(login, password string) (string, error)
}

// AuthHandler authenticates the operator for the admin client
type AuthHandler struct {
	svc AuthService
}

// NewAuthHandler creates new AuthHandler instance
func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// LoginUser checks the operator credentials and sets the session token
// 200 — оператор аутентифицирован;
// 400 — неверный формат запроса;
// 401 — неверный логин или пароль.
func (ah *AuthHandler) LoginUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := loginRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		token, err := ah.svc.Login(req.Login, req.Password)
		if err != nil {
			if errors.Is(err, models.ErrInvalidCredentials) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "auth_token",
			Value:    token,
			Path:     "/",
			HttpOnly: true,
		})

		writeJSON(w, http.StatusOK, loginResponse{Token: token})
	}
}
