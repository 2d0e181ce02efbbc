// Package services – UserService
//
// This file implements account registration, credential checks and profile
// updates. Usernames and emails are unique ignoring letter case; the store
// enforces it, the service only turns the clash into a Conflict.
package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-salon-backend/internal/domain"
	"github.com/tbourn/go-salon-backend/internal/repo"
)

const (
	minUsernameRunes = 3
	maxUsernameRunes = 64
	minPasswordRunes = 6
)

// PasswordHasher hashes and verifies passwords (see auth.BcryptHasher).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	Name         string
	Phone        *string
	IsSalonOwner bool
}

// UserPatch carries profile changes. Nil fields are left untouched.
type UserPatch struct {
	Username     *string
	Email        *string
	Password     *string
	Name         *string
	Phone        *string
	IsSalonOwner *bool
}

// UserService implements account use-cases.
type UserService struct {
	DB     *gorm.DB
	Hasher PasswordHasher
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, h PasswordHasher) *UserService {
	return &UserService{DB: db, Hasher: h}
}

// Register creates an account with a hashed password.
//
// Errors: Validation for malformed fields; ErrUsernameTaken / ErrEmailTaken
// (or ErrAccountTaken when a concurrent registration won the race).
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "Register",
		trace.WithAttributes(attribute.String("user.username", in.Username)),
	)
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.Name == "" {
		in.Name = in.Username
	}

	if _, err := repo.GetUserByUsername(ctx, s.DB, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if _, err := repo.GetUserByEmail(ctx, s.DB, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u, err := repo.CreateUser(ctx, s.DB, domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Phone:        normalizePhone(in.Phone),
		IsSalonOwner: in.IsSalonOwner,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAccountTaken
		}
		return nil, err
	}
	return u, nil
}

// Authenticate checks credentials. login may be a username or an email,
// matched ignoring letter case.
//
// Errors: ErrInvalidCredentials for an unknown login or a wrong password.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*domain.User, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "Authenticate")
	defer span.End()

	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	lookup := repo.GetUserByUsername
	if strings.Contains(login, "@") {
		lookup = repo.GetUserByEmail
	}
	u, err := lookup(ctx, s.DB, login)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get fetches a user by ID.
//
// Errors: ErrUserNotFound.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile merges patch into the caller's account. A new username or
// email is checked for uniqueness like at registration.
func (s *UserService) UpdateProfile(ctx context.Context, caller Caller, patch UserPatch) (*domain.User, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "UpdateProfile",
		trace.WithAttributes(attribute.String("user.id", caller.ID)),
	)
	defer span.End()

	fields := map[string]any{}
	if patch.Username != nil {
		v := strings.TrimSpace(*patch.Username)
		if err := validateUsername(v); err != nil {
			return nil, err
		}
		if other, err := repo.GetUserByUsername(ctx, s.DB, v); err == nil && other.ID != caller.ID {
			return nil, ErrUsernameTaken
		}
		fields["username"] = v
	}
	if patch.Email != nil {
		v := strings.TrimSpace(*patch.Email)
		if err := validateEmail(v); err != nil {
			return nil, err
		}
		if other, err := repo.GetUserByEmail(ctx, s.DB, v); err == nil && other.ID != caller.ID {
			return nil, ErrEmailTaken
		}
		fields["email"] = v
	}
	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, err
		}
		hash, err := s.Hasher.Hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hash
	}
	if patch.Name != nil {
		v := strings.TrimSpace(*patch.Name)
		if v == "" {
			return nil, validationError("name must not be empty")
		}
		fields["name"] = v
	}
	if patch.Phone != nil {
		fields["phone"] = normalizePhone(patch.Phone)
	}
	if patch.IsSalonOwner != nil {
		fields["is_salon_owner"] = *patch.IsSalonOwner
	}

	u, err := repo.UpdateUser(ctx, s.DB, caller.ID, fields)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, ErrUserNotFound
	case errors.Is(err, repo.ErrDuplicate):
		return nil, ErrAccountTaken
	case err != nil:
		return nil, err
	}
	return u, nil
}

func validateUsername(v string) error {
	n := utf8.RuneCountInString(v)
	if n < minUsernameRunes || n > maxUsernameRunes {
		return validationError("username must be %d to %d characters", minUsernameRunes, maxUsernameRunes)
	}
	if strings.ContainsFunc(v, unicode.IsSpace) || strings.Contains(v, "@") {
		return validationError("username must not contain spaces or @")
	}
	return nil
}

func validateEmail(v string) error {
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return validationError("email is not a valid address")
	}
	return nil
}

func validatePassword(v string) error {
	if utf8.RuneCountInString(v) < minPasswordRunes {
		return validationError("password must be at least %d characters", minPasswordRunes)
	}
	return nil
}

// normalizePhone trims the phone and maps blank to nil.
func normalizePhone(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
