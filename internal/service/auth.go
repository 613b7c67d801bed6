package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"shakehouse/internal/model"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type staffAccount struct {
	hash []byte
	role string
}

// AuthService checks staff credentials against the two fixed shop accounts.
// Passwords come from config and are held only as bcrypt hashes.
type AuthService struct {
	accounts map[string]staffAccount
}

func NewAuthService(adminPassword, staffPassword string) (*AuthService, error) {
	adminHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	staffHash, err := bcrypt.GenerateFromPassword([]byte(staffPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash staff password: %w", err)
	}

	return &AuthService{
		accounts: map[string]staffAccount{
			"admin":       {hash: adminHash, role: model.RoleAdmin},
			"funcionario": {hash: staffHash, role: model.RoleStaff},
		},
	}, nil
}

// Authenticate returns the account's role on success.
func (s *AuthService) Authenticate(username, password string) (string, error) {
	account, ok := s.accounts[username]
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(account.hash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return account.role, nil
}
