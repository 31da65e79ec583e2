package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// IDTokenClaims are the claims carried by an id_token issued at OAuth
// token exchange
type IDTokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IDTokenService issues and validates HS256 id_tokens
type IDTokenService struct {
	secret []byte
	issuer string
	expiry time.Duration
}

// NewIDTokenService creates a new id_token service
func NewIDTokenService(secret, issuer string, expiry time.Duration) *IDTokenService {
	return &IDTokenService{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
	}
}

// Issue signs an id_token for the given user
func (s *IDTokenService) Issue(userID, email, clientID string) (string, error) {
	now := time.Now()
	claims := &IDTokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{clientID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and validates an id_token and returns its claims
func (s *IDTokenService) Validate(tokenString string) (*IDTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &IDTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*IDTokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
