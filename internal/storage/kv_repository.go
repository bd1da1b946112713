package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sandeepkv93/todod/internal/kv"
	"github.com/sandeepkv93/todod/internal/model"
)

const (
	accountsKey     = "users"
	taskKeyPrefix   = "tasks:"
	groupsKeyPrefix = "groups:"
)

// KVRepository stores every collection as one JSON value, the same layout
// the browser build keeps in local storage.
type KVRepository struct {
	store kv.Store
}

func NewKVRepository(store kv.Store) (*KVRepository, error) {
	if store == nil {
		return nil, errors.New("storage: nil kv store")
	}
	return &KVRepository{store: store}, nil
}

func (r *KVRepository) Close() error {
	return r.store.Close()
}

func (r *KVRepository) LoadTasks(ctx context.Context, userID string) ([]model.Record, error) {
	out := make([]model.Record, 0)
	if err := r.getJSON(ctx, taskKeyPrefix+userID, &out); err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return out, nil
}

// SaveTasks removes the key once the list is empty, as a cleared
// collection does in browser storage.
func (r *KVRepository) SaveTasks(ctx context.Context, userID string, records []model.Record) error {
	if err := r.setOrDelete(ctx, taskKeyPrefix+userID, len(records), records); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

func (r *KVRepository) ListGroups(ctx context.Context, userID string) ([]string, error) {
	out := make([]string, 0)
	if err := r.getJSON(ctx, groupsKeyPrefix+userID, &out); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return out, nil
}

func (r *KVRepository) SaveGroups(ctx context.Context, userID string, groups []string) error {
	if err := r.setOrDelete(ctx, groupsKeyPrefix+userID, len(groups), groups); err != nil {
		return fmt.Errorf("save groups: %w", err)
	}
	return nil
}

func (r *KVRepository) CreateAccount(ctx context.Context, in Account) error {
	accounts, err := r.accounts(ctx)
	if err != nil {
		return err
	}
	key := UsernameKey(in.Username)
	if _, exists := accounts[key]; exists {
		return fmt.Errorf("%w: %s", ErrConflict, in.Username)
	}
	accounts[key] = in
	return r.setJSON(ctx, accountsKey, accounts)
}

func (r *KVRepository) GetAccountByUsername(ctx context.Context, username string) (Account, error) {
	accounts, err := r.accounts(ctx)
	if err != nil {
		return Account{}, err
	}
	acc, ok := accounts[UsernameKey(username)]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acc, nil
}

func (r *KVRepository) accounts(ctx context.Context) (map[string]Account, error) {
	out := make(map[string]Account)
	if err := r.getJSON(ctx, accountsKey, &out); err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return out, nil
}

// getJSON leaves dst untouched when the key is missing.
func (r *KVRepository) getJSON(ctx context.Context, key string, dst any) error {
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil
		}
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func (r *KVRepository) setOrDelete(ctx context.Context, key string, n int, v any) error {
	if n == 0 {
		return r.store.Delete(ctx, key)
	}
	return r.setJSON(ctx, key, v)
}

func (r *KVRepository) setJSON(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, key, payload)
}
