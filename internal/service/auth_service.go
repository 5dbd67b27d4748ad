// Package service holds the application's business rules, between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"

	"fashionai/internal/integrations"
	"fashionai/internal/models"
	"fashionai/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer issues a bearer token for a user ID.
type TokenIssuer interface {
	Issue(userID uint) (string, error)
}

type AuthService struct {
	users    repository.UserRepository
	codes    repository.VerificationStore
	mailer   integrations.Mailer
	tokens   TokenIssuer
	codeTTL  time.Duration
	hashCost int
	newCode  func() (string, error)
}

func NewAuthService(
	users repository.UserRepository,
	codes repository.VerificationStore,
	mailer integrations.Mailer,
	tokens TokenIssuer,
	codeTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:    users,
		codes:    codes,
		mailer:   mailer,
		tokens:   tokens,
		codeTTL:  codeTTL,
		hashCost: bcrypt.DefaultCost,
		newCode:  generateVerificationCode,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", models.NewInternalError(fmt.Errorf("hash password: %w", err))
	}
	return string(hashed), nil
}

// CreateUser persists a new account. Duplicate emails yield CONFLICT whether
// caught by the pre-check or by the unique index.
func (s *AuthService) CreateUser(ctx context.Context, in models.UserCreate) (*models.User, error) {
	email := NormalizeEmail(in.Email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}

	hashed, err := hashPassword(in.Password, s.hashCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Password:     hashed,
		Username:     strings.TrimSpace(in.Username),
		Bio:          in.Bio,
		PersonalLink: strings.TrimSpace(in.PersonalLink),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Register creates the user and returns a fresh access token.
func (s *AuthService) Register(ctx context.Context, in models.UserCreate) (*models.Token, error) {
	user, err := s.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issue(user.ID)
}

// Authenticate checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewAuthenticationFailedError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewAuthenticationFailedError()
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Token, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.issue(user.ID)
}

// SendVerificationCode stores a fresh code for an unregistered email,
// replacing any earlier one, and mails it.
func (s *AuthService) SendVerificationCode(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return models.NewConflictError("Email already registered")
	}

	code, err := s.newCode()
	if err != nil {
		return models.NewInternalError(fmt.Errorf("generate verification code: %w", err))
	}
	if err := s.codes.Save(ctx, email, code, s.codeTTL); err != nil {
		return models.NewInternalError(fmt.Errorf("store verification code: %w", err))
	}
	return s.mailer.SendVerificationCode(ctx, email, code)
}

// VerifyAndRegister consumes the stored code for the email and registers the user.
func (s *AuthService) VerifyAndRegister(ctx context.Context, in models.VerifyAndRegisterRequest) (*models.Token, error) {
	email := NormalizeEmail(in.Email)

	stored, err := s.codes.Get(ctx, email)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("load verification code: %w", err))
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(in.VerificationCode)) != 1 {
		return nil, models.NewInvalidVerificationCodeError()
	}

	in.Email = email
	user, err := s.CreateUser(ctx, in.UserCreate)
	if err != nil {
		return nil, err
	}
	if err := s.codes.Delete(ctx, email); err != nil {
		return nil, models.NewInternalError(fmt.Errorf("delete verification code: %w", err))
	}
	return s.issue(user.ID)
}

func (s *AuthService) issue(userID uint) (*models.Token, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("issue token: %w", err))
	}
	return &models.Token{AccessToken: token, TokenType: "bearer"}, nil
}

func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
