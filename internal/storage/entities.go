package storage

import (
	"strings"
	"time"

	"github.com/sandeepkv93/todod/internal/model"
)

type Account struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	PINHash   string    `json:"pinHash"`
	CreatedAt time.Time `json:"createdAt"`
}

// UsernameKey is the case-insensitive lookup key for an account.
func UsernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

type accountRow struct {
	ID          string `db:"id"`
	Username    string `db:"username"`
	UsernameKey string `db:"username_key"`
	PINHash     string `db:"pin_hash"`
	CreatedAt   string `db:"created_at"`
}

type taskRow struct {
	UserID   string `db:"user_id"`
	Position int    `db:"position"`
	model.Record
}

type groupRow struct {
	UserID   string `db:"user_id"`
	Name     string `db:"name"`
	Position int    `db:"position"`
}
