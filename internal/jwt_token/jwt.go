// Package jwttoken issues and validates the HS256 bearer tokens that unlock
// admin-only ledger actions.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "voteledger/pkg/domain-errors"
)

// RoleAdmin is the only role the ledger recognizes.
const RoleAdmin = "admin"

// Claims carried by an admin token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService handles token creation and validation.
type JWTService struct {
	signingKey []byte
	issuer     string
}

func NewJWTService(signingKey string, issuer string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// GenerateAdminToken signs an admin token for subject.
func (s *JWTService) GenerateAdminToken(subject string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken parses tokenString and returns its claims. Tokens that are
// not signed with HMAC, are expired, or do not carry the admin role are
// rejected with CodeUnauthorized.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if len(s.signingKey) == 0 {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "admin access is not configured")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Role != RoleAdmin {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token lacks admin role")
	}
	return claims, nil
}

// ValidateAdmin satisfies the admin middleware validator.
func (s *JWTService) ValidateAdmin(tokenString string) (string, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
