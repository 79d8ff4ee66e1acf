package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// AccessTokenExpiry is the duration for which access tokens are valid.
// Refresh tokens carry no expiry claim: revocation happens by overwriting or
// deleting the stored copy, not by TTL.
const AccessTokenExpiry = 20 * time.Minute

// UserSnapshot is the identity picture embedded in both tokens at issuance
// time.
type UserSnapshot struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Slug      string `json:"slug"`
	AvatarURL string `json:"avatarUrl"`
	IsAdmin   bool   `json:"isAdmin"`
}

// Claims represents JWT claims carrying a user snapshot.
type Claims struct {
	UserSnapshot
	jwt.RegisteredClaims
}

// JWTService handles token generation and validation. Access and refresh
// tokens are signed with separate secrets.
type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
}

// NewJWTService creates a new JWT service with the given secrets.
func NewJWTService(accessSecret, refreshSecret string) *JWTService {
	return &JWTService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

// GenerateAccessToken generates a short-lived access token embedding the
// snapshot.
func (s *JWTService) GenerateAccessToken(snapshot UserSnapshot) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserSnapshot: snapshot,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.accessSecret)
}

// GenerateRefreshToken generates a refresh token embedding the snapshot. No
// expiry claim is set.
func (s *JWTService) GenerateRefreshToken(snapshot UserSnapshot) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserSnapshot: snapshot,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.refreshSecret)
}

// ValidateAccessToken validates an access token and returns its claims.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.accessSecret)
}

// ValidateRefreshToken validates a refresh token's signature and returns its
// claims. Acceptance additionally requires an exact match against the stored
// copy for the embedded user id, checked by the caller.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.refreshSecret)
}

func (s *JWTService) validate(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
