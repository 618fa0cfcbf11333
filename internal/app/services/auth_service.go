package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/repositories"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	pkgauth "github.com/yigit/clubhub/internal/pkg/auth"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// TokenIssuer issues and revokes access tokens.
type TokenIssuer interface {
	Generate(userID uuid.UUID, email string) (pkgauth.Token, error)
	Revoke(token string) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(hashedPassword, password string) bool
}

// Registration is the input of AuthService.Register.
type Registration struct {
	Email    string
	Username string
	Password string
}

// AuthService handles authentication operations
type AuthService interface {
	Register(ctx context.Context, in Registration) (*models.User, *pkgauth.Token, error)
	Login(ctx context.Context, email, password string) (*models.User, *pkgauth.Token, error)
	Logout(ctx context.Context, token string) error
}

type authServiceImpl struct {
	store  repositories.Store
	tokens TokenIssuer
	hasher PasswordHasher
	clock  helpers.Clock
	logger zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(store repositories.Store, tokens TokenIssuer, hasher PasswordHasher, clock helpers.Clock, logger zerolog.Logger) AuthService {
	return &authServiceImpl{
		store:  store,
		tokens: tokens,
		hasher: hasher,
		clock:  clock,
		logger: logger,
	}
}

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateEmail validates an email address
func validateEmail(email string) error {
	if email == "" {
		return apperrors.Validation("email", "Email cannot be empty.")
	}
	if !emailRegex.MatchString(email) {
		return apperrors.Validation("email", "Email format is invalid.").WithParam("email", email)
	}
	return nil
}

// validatePassword checks if password meets requirements
func validatePassword(password string) error {
	if len(password) < 8 {
		return apperrors.Validation("password", "Password must be at least 8 characters long.")
	}

	var hasLetter, hasDigit bool
	for _, char := range password {
		if unicode.IsLetter(char) {
			hasLetter = true
		}
		if unicode.IsDigit(char) {
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return apperrors.Validation("password", "Password must contain at least one letter and one digit.")
	}
	return nil
}

// Register creates an account and signs the new user in.
func (s *authServiceImpl) Register(ctx context.Context, in Registration) (*models.User, *pkgauth.Token, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	s.logger.Debug().Str("email", email).Msg("Registering user")

	if err := validateEmail(email); err != nil {
		return nil, nil, finish(s.logger, "register", err)
	}
	if username == "" {
		return nil, nil, finish(s.logger, "register", apperrors.Validation("username", "Username is required."))
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, nil, finish(s.logger, "register", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, nil, finish(s.logger, "register", apperrors.Internal(err, "Failed to process password."))
	}

	now := s.clock.Now()
	user := models.User{
		ID:           models.NewID(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Preferences:  []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		_, err := tx.Users().GetByEmail(ctx, email)
		if err == nil {
			return apperrors.UserAlreadyExists(email)
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		if err := tx.Users().Create(ctx, &user); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return apperrors.UserAlreadyExists(email)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, finish(s.logger, "register", err)
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, nil, finish(s.logger, "register", apperrors.Internal(err, "Failed to issue access token."))
	}

	s.logger.Info().Str("userId", user.ID.String()).Msg("User registered")
	return &user, &token, nil
}

// Login checks the credentials and issues an access token. Unknown emails and
// wrong passwords produce the same error.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*models.User, *pkgauth.Token, error) {
	email = normalizeEmail(email)

	var user *models.User
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		user, err = tx.Users().GetByEmail(ctx, email)
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.InvalidCredentials()
		}
		return err
	})
	if err != nil {
		return nil, nil, finish(s.logger, "login", err)
	}
	if !s.hasher.Check(user.PasswordHash, password) {
		return nil, nil, finish(s.logger, "login", apperrors.InvalidCredentials())
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, nil, finish(s.logger, "login", apperrors.Internal(err, "Failed to issue access token."))
	}

	s.logger.Info().Str("userId", user.ID.String()).Msg("User logged in")
	return user, &token, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *authServiceImpl) Logout(_ context.Context, token string) error {
	if err := s.tokens.Revoke(token); err != nil {
		return finish(s.logger, "logout", apperrors.Unauthenticated("Token is invalid."))
	}
	return nil
}
