package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/novathreads/storefront-backend/internal/users"
	"github.com/novathreads/storefront-backend/pkg/db"
	"github.com/novathreads/storefront-backend/pkg/enums"
	pkgerrors "github.com/novathreads/storefront-backend/pkg/errors"
)

const minPasswordLength = 6

// EnsureAdmin creates the administrator account when no user holds email.
// It reports whether a user was created. An existing account is left as is.
func (s *service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "admin email is required")
	}
	if len(strings.TrimSpace(password)) < minPasswordLength {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "admin password must be at least 6 characters")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check admin email")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash admin password")
	}

	if _, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Store",
		LastName:     "Admin",
		Role:         enums.UserRoleAdmin,
	}); err != nil {
		if db.IsUniqueViolation(err, "users_email_key") {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create admin")
	}
	return true, nil
}
