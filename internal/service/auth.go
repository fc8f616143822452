package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sunho-bae/todo-api/internal/model"
	"github.com/sunho-bae/todo-api/internal/repository"
	"github.com/sunho-bae/todo-api/internal/token"
	"github.com/sunho-bae/todo-api/internal/validate"
)

// AuthService handles registration and login. Tokens are minted here and
// verified statelessly by the token codec; nothing is stored server-side
// per session.
type AuthService struct {
	users repository.UserRepository
	codec *token.Codec
	ttl   time.Duration
}

func NewAuthService(users repository.UserRepository, codec *token.Codec, ttl time.Duration) *AuthService {
	return &AuthService{users: users, codec: codec, ttl: ttl}
}

type RegisterInput struct {
	Name     string `validate:"required,max=50"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type LoginOutput struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (model.User, error) {
	if err := validate.Struct(input); err != nil {
		return model.User{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, model.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and mints a token for the user. A missing
// account and a wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginOutput, error) {
	if err := validate.Struct(input); err != nil {
		return LoginOutput{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LoginOutput{}, ErrInvalidCredentials
		}
		return LoginOutput{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return LoginOutput{}, ErrInvalidCredentials
	}

	signed, err := s.codec.Issue(user.ID, s.ttl)
	if err != nil {
		return LoginOutput{}, fmt.Errorf("failed to issue token: %w", err)
	}

	return LoginOutput{
		Token:     signed,
		ExpiresIn: int(s.ttl.Seconds()),
	}, nil
}
