package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "visitcare-backend"

// TokenType distinguishes access tokens from refresh tokens so one
// can never be presented where the other is expected.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Claims carried by every token issued by this service.
type Claims struct {
	MemberID  uuid.UUID `json:"member_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// Service issues and validates access/refresh token pairs. Each token
// type is signed with its own secret.
type Service struct {
	accessSecret  string
	refreshSecret string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewService(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *Service {
	return &Service{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// GenerateAccessToken issues a short-lived token carrying the member's role.
func (s *Service) GenerateAccessToken(memberID uuid.UUID, email, role string) (string, error) {
	return s.sign(Claims{
		MemberID:  memberID,
		Email:     email,
		Role:      role,
		TokenType: AccessToken,
	}, s.accessSecret, s.accessExpiry)
}

// GenerateRefreshToken issues a long-lived token without role claims.
// The role is re-read from the roster at refresh time so a demotion
// takes effect on the next rotation.
func (s *Service) GenerateRefreshToken(memberID uuid.UUID, email string) (string, error) {
	return s.sign(Claims{
		MemberID:  memberID,
		Email:     email,
		TokenType: RefreshToken,
	}, s.refreshSecret, s.refreshExpiry)
}

func (s *Service) sign(claims Claims, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    issuer,
		Subject:   claims.MemberID.String(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", claims.TokenType, err)
	}
	return signed, nil
}

// ValidateAccessToken verifies signature, expiry and token type.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.accessSecret, AccessToken)
}

// ValidateRefreshToken verifies signature, expiry and token type.
func (s *Service) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.refreshSecret, RefreshToken)
}

func (s *Service) validate(tokenString, secret string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.TokenType != want {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", want, claims.TokenType)
	}

	return claims, nil
}

// peekClaims decodes claims without verifying the signature.
func peekClaims(tokenString string) (*Claims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// IsTokenExpired reports whether a token is past its expiry. Used to
// distinguish an expired token from a forged one in error responses,
// so a token that cannot be parsed at all is not "expired".
func (s *Service) IsTokenExpired(tokenString string) bool {
	claims, err := peekClaims(tokenString)
	if err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Time.Before(time.Now())
}

// GetTokenExpiry returns a token's expiry timestamp without verifying it.
func (s *Service) GetTokenExpiry(tokenString string) (time.Time, error) {
	claims, err := peekClaims(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("token has no expiry time")
	}
	return claims.ExpiresAt.Time, nil
}
