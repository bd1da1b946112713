package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/sandeepkv93/todod/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sqlx.DB
}

func NewSQLiteRepository(db *sqlx.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens path, runs pending migrations and returns the repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection keeps PRAGMA foreign_keys in effect for every statement
	db.SetMaxOpenConns(1)
	if err := MigrateUp(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) LoadTasks(ctx context.Context, userID string) ([]model.Record, error) {
	rows := make([]taskRow, 0)
	err := r.db.SelectContext(ctx, &rows, `
		SELECT user_id, position, id, title, is_completed, priority, due_date, group_name, created_at, updated_at
		FROM tasks WHERE user_id = ? ORDER BY position ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	out := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Record)
	}
	return out, nil
}

// SaveTasks replaces the user's rows inside one transaction so a failed
// write leaves the previous list intact.
func (r *SQLiteRepository) SaveTasks(ctx context.Context, userID string, records []model.Record) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tasks: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	for i, rec := range records {
		row := taskRow{UserID: userID, Position: i, Record: rec}
		if _, err = tx.NamedExecContext(ctx, `
			INSERT INTO tasks (user_id, id, position, title, is_completed, priority, due_date, group_name, created_at, updated_at)
			VALUES (:user_id, :id, :position, :title, :is_completed, :priority, :due_date, :group_name, :created_at, :updated_at)`,
			row); err != nil {
			return fmt.Errorf("insert task %s: %w", rec.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save tasks: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListGroups(ctx context.Context, userID string) ([]string, error) {
	out := make([]string, 0)
	if err := r.db.SelectContext(ctx, &out, `SELECT name FROM task_groups WHERE user_id = ? ORDER BY position ASC`, userID); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) SaveGroups(ctx context.Context, userID string, groups []string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save groups: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM task_groups WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear groups: %w", err)
	}
	for i, name := range groups {
		row := groupRow{UserID: userID, Name: name, Position: i}
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO task_groups (user_id, name, position) VALUES (:user_id, :name, :position)`, row); err != nil {
			return fmt.Errorf("insert group %q: %w", name, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save groups: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, in Account) error {
	row := accountRow{
		ID:          in.ID,
		Username:    in.Username,
		UsernameKey: UsernameKey(in.Username),
		PINHash:     in.PINHash,
		CreatedAt:   in.CreatedAt.UTC().Format(sqliteTimeLayout),
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO accounts (id, username, username_key, pin_hash, created_at)
		VALUES (:id, :username, :username_key, :pin_hash, :created_at)`, row)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrConflict, in.Username)
	}
	return err
}

func (r *SQLiteRepository) GetAccountByUsername(ctx context.Context, username string) (Account, error) {
	var row accountRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, username, username_key, pin_hash, created_at
		FROM accounts WHERE username_key = ?`, UsernameKey(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	created, err := time.Parse(sqliteTimeLayout, row.CreatedAt)
	if err != nil {
		return Account{}, err
	}
	return Account{ID: row.ID, Username: row.Username, PINHash: row.PINHash, CreatedAt: created}, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
