package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/vendormart/ledger/internal/models"
)

const tokenTTL = 24 * time.Hour

// Claims are JWT claims carrying the vendor identity
type Claims struct {
	jwt.RegisteredClaims
	VendorID uint64 `json:"vendor_id"`
	UserID   uint64 `json:"user_id"`
}

// AuthToken issues and verifies JWT auth tokens
type AuthToken struct {
	key []byte
}

// NewAuthToken creates new AuthToken instance with signing key
func NewAuthToken(key []byte) *AuthToken {
	return &AuthToken{key: key}
}

// CreateToken creates signed token for vendor
func (at *AuthToken) CreateToken(vendor *models.VendorProfile) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		VendorID: vendor.ID,
		UserID:   vendor.UserID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(at.key)
}

// VerifyToken parses and validates token string
func (at *AuthToken) VerifyToken(tokenString string) (*models.TokenPayload, error) {
	claims := Claims{}

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return at.key, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return &models.TokenPayload{
		VendorID: claims.VendorID,
		UserID:   claims.UserID,
	}, nil
}
