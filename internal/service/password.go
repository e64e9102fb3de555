package service

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"studentportal/internal/config"
)

// PasswordScheme encodes passwords for storage and checks submitted ones.
type PasswordScheme interface {
	Encode(plain string) (string, error)
	Verify(stored, plain string) bool
}

// NewPasswordScheme returns the scheme named by auth.password_scheme.
func NewPasswordScheme(name string) (PasswordScheme, error) {
	switch name {
	case "", config.PasswordSchemePlaintext:
		return PlaintextScheme{}, nil
	case config.PasswordSchemeBcrypt:
		return BcryptScheme{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", name)
	}
}

// PlaintextScheme stores passwords as given.
type PlaintextScheme struct{}

func (PlaintextScheme) Encode(plain string) (string, error) { return plain, nil }

func (PlaintextScheme) Verify(stored, plain string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1
}

// BcryptScheme stores bcrypt hashes.
type BcryptScheme struct {
	Cost int
}

func (s BcryptScheme) Encode(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), s.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (BcryptScheme) Verify(stored, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}
