package service

import (
	"github.com/akormin/logoorder/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// TokenService issues and verifies operator session tokens
type TokenService interface {
	CreateToken(login string) (string, error)
	VerifyToken(tokenString string) (*models.TokenPayload, error)
}

// AuthService authenticates the single configured operator
type AuthService struct {
	login        string
	passwordHash []byte
	token        TokenService
}

// NewAuthService creates new AuthService instance. The operator password is
// hashed once at startup; only the hash is kept.
func NewAuthService(login, password string, token TokenService) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &AuthService{
		login:        login,
		passwordHash: hash,
		token:        token,
	}, nil
}

// Login checks the operator credentials and returns a session token
func (as *AuthService) Login(login, password string) (string, error) {
	if login != as.login {
		return "", models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(as.passwordHash, []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	return as.token.CreateToken(login)
}
