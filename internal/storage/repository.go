package storage

import (
	"context"
	"errors"

	"github.com/sandeepkv93/todod/internal/model"
)

var (
	ErrNotFound = errors.New("storage: not found")
	ErrConflict = errors.New("storage: already exists")
)

// Repository is the per-user persistence boundary. Task lists and group
// lists are always written in full.
type Repository interface {
	LoadTasks(ctx context.Context, userID string) ([]model.Record, error)
	SaveTasks(ctx context.Context, userID string, records []model.Record) error

	ListGroups(ctx context.Context, userID string) ([]string, error)
	SaveGroups(ctx context.Context, userID string, groups []string) error

	CreateAccount(ctx context.Context, in Account) error
	GetAccountByUsername(ctx context.Context, username string) (Account, error)

	Close() error
}
