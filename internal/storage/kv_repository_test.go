package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sandeepkv93/todod/internal/kv"
)

func setupKVRepo(t *testing.T) *KVRepository {
	t.Helper()
	store, err := kv.NewFileStore(filepath.Join(t.TempDir(), "kv"))
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	repo, err := NewKVRepository(store)
	if err != nil {
		t.Fatalf("kv repo: %v", err)
	}
	return repo
}

func TestKVRepositoryTasksAndGroups(t *testing.T) {
	repo := setupKVRepo(t)
	ctx := context.Background()

	empty, err := repo.LoadTasks(ctx, "user-1")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty tasks for new user, got %v, %v", empty, err)
	}

	records := sampleRecords(t)
	if err := repo.SaveTasks(ctx, "user-1", records); err != nil {
		t.Fatalf("save tasks: %v", err)
	}
	got, err := repo.LoadTasks(ctx, "user-1")
	if err != nil || len(got) != 2 || got[0] != records[0] || got[1] != records[1] {
		t.Fatalf("unexpected tasks: %#v, %v", got, err)
	}

	if err := repo.SaveGroups(ctx, "user-1", []string{"Work"}); err != nil {
		t.Fatalf("save groups: %v", err)
	}
	groups, err := repo.ListGroups(ctx, "user-1")
	if err != nil || len(groups) != 1 || groups[0] != "Work" {
		t.Fatalf("unexpected groups: %v, %v", groups, err)
	}
	other, _ := repo.ListGroups(ctx, "user-2")
	if len(other) != 0 {
		t.Fatalf("groups leaked across users: %v", other)
	}
}

func TestKVRepositoryEmptyListsDropKeys(t *testing.T) {
	store, err := kv.NewFileStore(filepath.Join(t.TempDir(), "kv"))
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	repo, err := NewKVRepository(store)
	if err != nil {
		t.Fatalf("kv repo: %v", err)
	}
	ctx := context.Background()

	if err := repo.SaveTasks(ctx, "user-1", sampleRecords(t)); err != nil {
		t.Fatalf("save tasks: %v", err)
	}
	if err := repo.SaveGroups(ctx, "user-1", []string{"Work"}); err != nil {
		t.Fatalf("save groups: %v", err)
	}
	if err := repo.SaveTasks(ctx, "user-1", nil); err != nil {
		t.Fatalf("clear tasks: %v", err)
	}
	if err := repo.SaveGroups(ctx, "user-1", []string{}); err != nil {
		t.Fatalf("clear groups: %v", err)
	}

	for _, key := range []string{taskKeyPrefix + "user-1", groupsKeyPrefix + "user-1"} {
		if _, err := store.Get(ctx, key); !errors.Is(err, kv.ErrNotFound) {
			t.Fatalf("expected %s removed, got %v", key, err)
		}
	}
	tasks, err := repo.LoadTasks(ctx, "user-1")
	if err != nil || len(tasks) != 0 {
		t.Fatalf("expected empty tasks after clear, got %v, %v", tasks, err)
	}
	// clearing twice is fine
	if err := repo.SaveTasks(ctx, "user-1", nil); err != nil {
		t.Fatalf("clear again: %v", err)
	}
}

func TestKVRepositoryAccounts(t *testing.T) {
	repo := setupKVRepo(t)
	ctx := context.Background()
	createAccount(t, repo, "user-1", "Alice")

	got, err := repo.GetAccountByUsername(ctx, "ALICE")
	if err != nil || got.ID != "user-1" {
		t.Fatalf("unexpected account: %#v, %v", got, err)
	}
	if err := repo.CreateAccount(ctx, Account{ID: "user-2", Username: "alice"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := repo.GetAccountByUsername(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), OpenOptions{Backend: "etcd"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestOpenFileBackend(t *testing.T) {
	repo, err := Open(context.Background(), OpenOptions{Backend: BackendFile, DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("open file backend: %v", err)
	}
	defer repo.Close()
	if _, ok := repo.(*KVRepository); !ok {
		t.Fatalf("expected KVRepository, got %T", repo)
	}
}
