package service

import (
	"context"
	"errors"

	"github.com/vendormart/ledger/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// VendorRepository is interface for interacting with vendor-related data
type VendorRepository interface {
	// GetVendorByLogin returns vendor profile by login
	GetVendorByLogin(ctx context.Context, login string) (*models.VendorProfile, error)
}

// TokenService issues and verifies auth tokens
type TokenService interface {
	CreateToken(vendor *models.VendorProfile) (string, error)
	VerifyToken(tokenString string) (*models.TokenPayload, error)
}

// AuthService implements AuthService interface
type AuthService struct {
	repo  VendorRepository
	token TokenService
}

// NewAuthService creates new AuthService instance
func NewAuthService(repo VendorRepository, token TokenService) *AuthService {
	return &AuthService{
		repo:  repo,
		token: token,
	}
}

// Login verifies vendor credentials and returns a signed auth token
func (as *AuthService) Login(ctx context.Context, login, password string) (string, error) {
	vendor, err := as.repo.GetVendorByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			return "", models.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(vendor.PasswordHash), []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	return as.token.CreateToken(vendor)
}
