package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Idahel/js-project-api/internal/credentials"
	"github.com/Idahel/js-project-api/internal/store"
	"github.com/Idahel/js-project-api/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user types.User) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	GetByAccessToken(ctx context.Context, token string) (types.User, error)
}

// UserService encapsulates sign-up, sign-in and token resolution.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// SignUpInput is the validated shape of a new account.
type SignUpInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SignUp creates a user with a hashed password and a freshly issued token.
// Duplicate names or emails surface as store.ErrConflict.
func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (types.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return types.User{}, err
	}

	hashed, err := credentials.Hash(in.Password)
	if err != nil {
		return types.User{}, err
	}
	token, err := credentials.IssueToken()
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashed,
		AccessToken:  token,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return types.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// SignIn returns the user owning email when password matches.
func (s *UserService) SignIn(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, fmt.Errorf("find user: %w", err)
	}
	if !credentials.Verify(password, user.PasswordHash) {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Authenticate resolves a bearer token to its user. Unknown tokens return
// store.ErrNotFound.
func (s *UserService) Authenticate(ctx context.Context, token string) (types.User, error) {
	return s.repo.GetByAccessToken(ctx, token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
