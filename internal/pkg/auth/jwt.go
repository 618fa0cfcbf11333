package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// JWT errors
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrRevokedToken  = errors.New("token revoked")
	ErrInvalidFormat = errors.New("invalid token format")
)

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey      string
	AccessTokenExp time.Duration
	TokenIssuer    string
}

// JWTService issues and validates HS256 access tokens.
type JWTService struct {
	config  JWTConfig
	clock   helpers.Clock
	revoked *RevocationList
}

// NewJWTService creates a new JWT service. revoked may be nil when logout is not
// supported.
func NewJWTService(config JWTConfig, clock helpers.Clock, revoked *RevocationList) *JWTService {
	if clock == nil {
		clock = helpers.SystemClock{}
	}
	return &JWTService{config: config, clock: clock, revoked: revoked}
}

// Claims defines JWT token content
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	ExpiresIn   int       `json:"expiresIn"`
}

// Generate signs an access token for the user.
func (s *JWTService) Generate(userID uuid.UUID, email string) (Token, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.config.AccessTokenExp)

	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   userID.String(),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return Token{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		ExpiresIn:   int(s.config.AccessTokenExp.Seconds()),
	}, nil
}

// ValidateToken parses and verifies a token against the service clock.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	}
	if s.config.TokenIssuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.TokenIssuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.SecretKey), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if s.revoked != nil && s.revoked.IsRevoked(claims.ID) {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// Resolve turns a bearer credential into the caller's user id.
func (s *JWTService) Resolve(_ context.Context, credential string) (uuid.UUID, error) {
	token, err := ExtractBearerToken(credential)
	if err != nil {
		return uuid.Nil, apperrors.Unauthenticated("Missing bearer token.")
	}
	claims, err := s.ValidateToken(token)
	if err != nil {
		switch {
		case errors.Is(err, ErrExpiredToken):
			return uuid.Nil, apperrors.Unauthenticated("Token has expired.")
		case errors.Is(err, ErrRevokedToken):
			return uuid.Nil, apperrors.Unauthenticated("Token has been revoked.")
		}
		return uuid.Nil, apperrors.Unauthenticated("Token is invalid.")
	}
	id, err := claims.UserID()
	if err != nil {
		return uuid.Nil, apperrors.Unauthenticated("Token subject is not a user id.")
	}
	return id, nil
}

// Revoke blacklists the token until it would have expired anyway.
func (s *JWTService) Revoke(tokenString string) error {
	if s.revoked == nil {
		return nil
	}
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		if errors.Is(err, ErrRevokedToken) {
			return nil
		}
		return err
	}
	s.revoked.Revoke(claims.ID, claims.ExpiresAt.Time)
	return nil
}

// ExtractBearerToken extracts the token from the Authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", ErrInvalidFormat
	}
	if scheme, rest, ok := strings.Cut(authHeader, " "); ok {
		if !strings.EqualFold(scheme, "Bearer") {
			return "", ErrInvalidFormat
		}
		authHeader = strings.TrimSpace(rest)
	}
	if authHeader == "" {
		return "", ErrInvalidFormat
	}
	return authHeader, nil
}
