// Package auth manages username/PIN accounts. PINs are kept only as bcrypt
// hashes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sandeepkv93/todod/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBcryptCost = 12
	minUsernameLen    = 3
	maxUsernameLen    = 32
	minPINLen         = 4
	maxPINLen         = 8
)

var (
	ErrInvalidUsername = errors.New("auth: username must be 3-32 characters")
	ErrInvalidPIN      = errors.New("auth: PIN must be 4-8 digits")
	ErrUserExists      = errors.New("auth: username already taken")
	ErrBadCredentials  = errors.New("auth: invalid username or PIN")
)

type AccountStore interface {
	CreateAccount(ctx context.Context, in storage.Account) error
	GetAccountByUsername(ctx context.Context, username string) (storage.Account, error)
}

type Account struct {
	ID       string
	Username string
}

type Service struct {
	store AccountStore
	cost  int
	log   *slog.Logger
	now   func() time.Time
}

func NewService(store AccountStore, cost int, log *slog.Logger) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, cost: cost, log: log.With("component", "auth"), now: time.Now}
}

func (s *Service) Register(ctx context.Context, username, pin string) (Account, error) {
	name := strings.TrimSpace(username)
	if err := ValidateUsername(name); err != nil {
		return Account{}, err
	}
	if err := ValidatePIN(pin); err != nil {
		return Account{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), s.cost)
	if err != nil {
		return Account{}, fmt.Errorf("auth: hash PIN: %w", err)
	}
	acc := storage.Account{
		ID:        uuid.NewString(),
		Username:  name,
		PINHash:   string(hash),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return Account{}, ErrUserExists
		}
		return Account{}, fmt.Errorf("auth: create account: %w", err)
	}
	s.log.Info("account registered", "user", acc.ID)
	return Account{ID: acc.ID, Username: acc.Username}, nil
}

// Login never tells apart an unknown username from a wrong PIN.
func (s *Service) Login(ctx context.Context, username, pin string) (Account, error) {
	acc, err := s.store.GetAccountByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Info("login rejected", "reason", "unknown user")
			return Account{}, ErrBadCredentials
		}
		return Account{}, fmt.Errorf("auth: load account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PINHash), []byte(pin)); err != nil {
		s.log.Info("login rejected", "reason", "pin mismatch", "user", acc.ID)
		return Account{}, ErrBadCredentials
	}
	s.log.Info("login succeeded", "user", acc.ID)
	return Account{ID: acc.ID, Username: acc.Username}, nil
}

func ValidateUsername(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < minUsernameLen || n > maxUsernameLen {
		return ErrInvalidUsername
	}
	return nil
}

func ValidatePIN(pin string) error {
	if len(pin) < minPINLen || len(pin) > maxPINLen {
		return ErrInvalidPIN
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return ErrInvalidPIN
		}
	}
	return nil
}
