package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"business-directory/internal/store"
)

// Legacy default credential, replaced the first time create-admin runs.
const (
	DefaultUsername = "admin"
	defaultPassword = "directory_admin"
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// VerifyAdmin reports whether the username/password pair matches a stored
// admin credential.
func VerifyAdmin(ctx context.Context, st store.Store, username, password string) (bool, error) {
	admin, err := st.AdminByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if admin == nil {
		return false, nil
	}
	return CheckPassword(password, admin.PasswordHash) == nil, nil
}

// EnsureDefaultAdmin seeds the legacy admin credential when no admin exists
// yet, so a fresh install is usable before create-admin has been run.
func EnsureDefaultAdmin(ctx context.Context, st store.Store) error {
	n, err := st.AdminCount(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := HashPassword(defaultPassword)
	if err != nil {
		return err
	}
	return st.UpsertAdmin(ctx, DefaultUsername, hash)
}
