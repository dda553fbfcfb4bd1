package services

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"yatube/app/models"
	"yatube/app/repositories"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// UserService backs the identity provider: registration, credential checks
// and account removal.
type UserService struct {
	users repositories.UserRepository
	cost  int
	now   func() time.Time
}

func NewUserService(users repositories.UserRepository, cost int, now func() time.Time) *UserService {
	return &UserService{users: users, cost: cost, now: now}
}

// Register creates an account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, newInvalidInputError(map[string]string{
			"password": "This password is too short. It must contain at least 8 characters.",
		})
	}
	if len(password) > MaxPasswordBytes {
		return nil, newInvalidInputError(map[string]string{
			"password": "This password is too long. It must contain at most 72 bytes.",
		})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, NewAppError(ErrInvalidInput, "cannot hash password", err)
	}

	user := &models.User{Username: username, PasswordHash: string(hash)}
	user.BeforeCreate(s.now())
	if err := user.Validate(); err != nil {
		return nil, validationError(err, nil)
	}
	err = s.users.Create(ctx, user)
	if errors.Is(err, repositories.ErrDuplicate) {
		return nil, &AppError{
			Code:    ErrDuplicate,
			Message: "username taken",
			Fields:  map[string]string{"username": "A user with that username already exists."},
			Origin:  err,
		}
	}
	if err != nil {
		return nil, storageError(err, "user")
	}
	return user, nil
}

// Authenticate returns the user whose credentials match. Unknown users and
// wrong passwords fail identically.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	invalid := &AppError{Code: ErrUnauthorized, Message: "Please enter a correct username and password."}

	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, storageError(err, "user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, invalid
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "user")
	}
	return user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, storageError(err, "user")
	}
	return user, nil
}

// Delete removes the account along with its posts, comments and follow edges.
func (s *UserService) Delete(ctx context.Context, id int) error {
	return storageError(s.users.Delete(ctx, id), "user")
}
