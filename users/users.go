package users

import (
	"fmt"
	"slices"
	"time"
	"unicode"

	apperrors "github.com/jrsteele09/go-token-server/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID           string    `json:"id,omitempty"`          // Unique identifier for the user
	Email        string    `json:"email,omitempty"`       // User's email address
	Username     string    `json:"username,omitempty"`    // Unique username
	PasswordHash string    `json:"-"`                     // Hashed version of the user's password - never serialize
	DateJoined   time.Time `json:"date_joined,omitempty"` // Date and time when the user registered
	TenantIDs    []string  `json:"tenant_ids,omitempty"`  // Tenants the user may obtain tokens for

	Verified bool `json:"verified,omitempty"` // Verified, has the user verified who they are
	Blocked  bool `json:"blocked,omitempty"`  // Blocked, has the user been blocked from logging in
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// HasTenant reports whether the user belongs to tenantID. An empty tenant
// matches every user.
func (u *User) HasTenant(tenantID string) bool {
	return tenantID == "" || slices.Contains(u.TenantIDs, tenantID)
}

// CanLogin returns the reason the user may not obtain tokens, or nil.
func (u *User) CanLogin(tenantID string) error {
	switch {
	case u.Blocked:
		return apperrors.ErrUserBlocked
	case !u.Verified:
		return apperrors.ErrUserNotVerified
	case !u.HasTenant(tenantID):
		return apperrors.Wrapf(apperrors.ErrUserNotFound, "tenant %s", tenantID)
	}
	return nil
}
