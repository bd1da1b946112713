package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sandeepkv93/todod/internal/model"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "todod-test.db")
	repo, err := OpenSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func createAccount(t *testing.T, repo Repository, id, username string) {
	t.Helper()
	err := repo.CreateAccount(context.Background(), Account{
		ID:        id,
		Username:  username,
		PINHash:   "hash",
		CreatedAt: parseRFC3339(t, "2026-02-09T12:00:00Z"),
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
}

func sampleRecords(t *testing.T) []model.Record {
	t.Helper()
	created := parseRFC3339(t, "2026-02-09T12:00:00Z")
	due := parseRFC3339(t, "2026-02-11T00:00:00Z")
	first := model.New("task-1", "Write schema", model.PriorityHigh, &due, "Work", created)
	second := model.New("task-2", "Buy milk", model.PriorityLow, nil, "", created.Add(time.Minute))
	second.ToggleCompletion(created.Add(time.Hour))
	return []model.Record{first.Record(), second.Record()}
}

func TestSaveAndLoadTasksKeepsOrder(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	createAccount(t, repo, "user-1", "alice")

	records := sampleRecords(t)
	if err := repo.SaveTasks(ctx, "user-1", records); err != nil {
		t.Fatalf("save tasks: %v", err)
	}
	got, err := repo.LoadTasks(ctx, "user-1")
	if err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	if len(got) != 2 || got[0] != records[0] || got[1] != records[1] {
		t.Fatalf("unexpected tasks: %#v", got)
	}

	reversed := []model.Record{records[1], records[0]}
	if err := repo.SaveTasks(ctx, "user-1", reversed); err != nil {
		t.Fatalf("save reversed: %v", err)
	}
	got, err = repo.LoadTasks(ctx, "user-1")
	if err != nil {
		t.Fatalf("load reversed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "task-2" || got[1].ID != "task-1" {
		t.Fatalf("expected full replace in new order, got %#v", got)
	}

	if err := repo.SaveTasks(ctx, "user-1", nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	got, err = repo.LoadTasks(ctx, "user-1")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty list, got %#v, %v", got, err)
	}
}

func TestTasksAreScopedPerUser(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	createAccount(t, repo, "user-1", "alice")
	createAccount(t, repo, "user-2", "bob")

	records := sampleRecords(t)
	if err := repo.SaveTasks(ctx, "user-1", records); err != nil {
		t.Fatalf("save alice: %v", err)
	}
	if err := repo.SaveTasks(ctx, "user-2", records[:1]); err != nil {
		t.Fatalf("save bob: %v", err)
	}
	alice, _ := repo.LoadTasks(ctx, "user-1")
	bob, _ := repo.LoadTasks(ctx, "user-2")
	if len(alice) != 2 || len(bob) != 1 {
		t.Fatalf("unexpected scoping: alice=%d bob=%d", len(alice), len(bob))
	}
}

func TestGroupsRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	createAccount(t, repo, "user-1", "alice")

	groups, err := repo.ListGroups(ctx, "user-1")
	if err != nil || len(groups) != 0 {
		t.Fatalf("expected no groups, got %v, %v", groups, err)
	}
	if err := repo.SaveGroups(ctx, "user-1", []string{"Work", "Home"}); err != nil {
		t.Fatalf("save groups: %v", err)
	}
	groups, err = repo.ListGroups(ctx, "user-1")
	if err != nil || len(groups) != 2 || groups[0] != "Work" || groups[1] != "Home" {
		t.Fatalf("unexpected groups: %v, %v", groups, err)
	}
}

func TestAccountsAreCaseInsensitive(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	createAccount(t, repo, "user-1", "Alice")

	got, err := repo.GetAccountByUsername(ctx, " alice ")
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.ID != "user-1" || got.Username != "Alice" {
		t.Fatalf("unexpected account: %#v", got)
	}

	err = repo.CreateAccount(ctx, Account{ID: "user-2", Username: "ALICE", PINHash: "x", CreatedAt: time.Now()})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := repo.GetAccountByUsername(ctx, "nobody"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveTasksRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("PRAGMA foreign_keys = ON").WillReturnResult(sqlmock.NewResult(0, 0))
	repo, err := NewSQLiteRepository(sqlx.NewDb(db, "sqlite3"))
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM tasks").WithArgs("user-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO tasks").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = repo.SaveTasks(context.Background(), "user-1", sampleRecords(t))
	if err == nil {
		t.Fatal("expected save error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
