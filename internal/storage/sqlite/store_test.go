package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-tracker/internal/models"
	"github.com/adanyl0v/task-tracker/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.db")
	store, err := Open(context.Background(), zerolog.Nop(), path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func mustCreateUser(t *testing.T, store *Store, username string) *models.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), username, "hash-"+username)
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func mustCreateTask(t *testing.T, store *Store, ownerID int64, title string) *models.Task {
	t.Helper()
	task, err := store.CreateTask(context.Background(), &models.Task{OwnerID: ownerID, Title: title})
	if err != nil {
		t.Fatalf("create task %s: %v", title, err)
	}
	return task
}

func ptr(s string) *string {
	return &s
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), zerolog.Nop(), " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenTwiceKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	ctx := context.Background()

	store, err := Open(ctx, zerolog.Nop(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.CreateUser(ctx, "alice", "hash"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err = Open(ctx, zerolog.Nop(), path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, err := store.GetUserByUsername(ctx, "alice"); err != nil {
		t.Fatalf("get user after reopen: %v", err)
	}
}

func TestCreateUserUnique(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	first := mustCreateUser(t, store, "alice")
	if first.ID == 0 {
		t.Fatal("expected generated id")
	}

	_, err := store.CreateUser(ctx, "alice", "other-hash")
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("got %v, want ErrAlreadyExists", err)
	}

	got, err := store.GetUserByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.PasswordHash != "hash-alice" {
		t.Fatalf("stored hash changed to %q", got.PasswordHash)
	}
}

func TestGetUserNotFound(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	if _, err := store.GetUserByID(ctx, 42); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("by id: got %v, want ErrNotFound", err)
	}
	if _, err := store.GetUserByUsername(ctx, "nobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("by username: got %v, want ErrNotFound", err)
	}
}

func TestTaskCRUD(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, store, "alice")

	created, err := store.CreateTask(ctx, &models.Task{OwnerID: alice.ID, Title: "write", Description: ptr("draft")})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := store.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Title != "write" || got.Description == nil || *got.Description != "draft" || got.OwnerID != alice.ID {
		t.Fatalf("unexpected task: %+v", got)
	}

	updated, err := store.UpdateTask(ctx, created.ID, "rewrite", nil)
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.Title != "rewrite" || updated.Description != nil {
		t.Fatalf("expected full overwrite, got %+v", updated)
	}

	deleted, err := store.DeleteTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if deleted.ID != created.ID || deleted.Title != "rewrite" {
		t.Fatalf("unexpected deleted task: %+v", deleted)
	}

	if _, err := store.GetTask(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get deleted: got %v, want ErrNotFound", err)
	}
	if _, err := store.UpdateTask(ctx, created.ID, "x", nil); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("update deleted: got %v, want ErrNotFound", err)
	}
	if _, err := store.DeleteTask(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete deleted: got %v, want ErrNotFound", err)
	}
}

func TestCreateTaskRequiresOwner(t *testing.T) {
	store := openTempStore(t)

	_, err := store.CreateTask(context.Background(), &models.Task{OwnerID: 99, Title: "orphan"})
	if !errors.Is(err, storage.ErrReferenceNotFound) {
		t.Fatalf("got %v, want ErrReferenceNotFound", err)
	}
}

func TestListVisibleTasks(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, store, "alice")
	bob := mustCreateUser(t, store, "bob")

	a1 := mustCreateTask(t, store, alice.ID, "a1")
	b1 := mustCreateTask(t, store, bob.ID, "b1")
	a2 := mustCreateTask(t, store, alice.ID, "a2")
	b2 := mustCreateTask(t, store, bob.ID, "b2")

	if _, err := store.CreateGrant(ctx, models.Permission{TaskID: a2.ID, UserID: bob.ID, Type: models.PermissionRead}); err != nil {
		t.Fatalf("grant: %v", err)
	}
	// A duplicate grant must not duplicate the task in the listing.
	if _, err := store.CreateGrant(ctx, models.Permission{TaskID: a2.ID, UserID: bob.ID, Type: models.PermissionUpdate}); err != nil {
		t.Fatalf("grant: %v", err)
	}

	tasks, err := store.ListVisibleTasks(ctx, bob.ID, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	assertTaskIDs(t, tasks, b1.ID, a2.ID, b2.ID)

	tasks, err = store.ListVisibleTasks(ctx, alice.ID, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	assertTaskIDs(t, tasks, a1.ID, a2.ID)

	tasks, err = store.ListVisibleTasks(ctx, bob.ID, 1, 1)
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	assertTaskIDs(t, tasks, a2.ID)

	tasks, err = store.ListVisibleTasks(ctx, bob.ID, 10, 10)
	if err != nil {
		t.Fatalf("list past end: %v", err)
	}
	assertTaskIDs(t, tasks)
}

func TestGrants(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, store, "alice")
	bob := mustCreateUser(t, store, "bob")
	task := mustCreateTask(t, store, alice.ID, "shared")

	read, err := store.CreateGrant(ctx, models.Permission{TaskID: task.ID, UserID: bob.ID, Type: models.PermissionRead})
	if err != nil {
		t.Fatalf("grant read: %v", err)
	}
	update, err := store.CreateGrant(ctx, models.Permission{TaskID: task.ID, UserID: bob.ID, Type: models.PermissionUpdate})
	if err != nil {
		t.Fatalf("grant update: %v", err)
	}

	grants, err := store.ListGrants(ctx, task.ID, bob.ID)
	if err != nil {
		t.Fatalf("list grants: %v", err)
	}
	if len(grants) != 2 || grants[0].ID != read.ID || grants[1].ID != update.ID {
		t.Fatalf("unexpected grants: %+v", grants)
	}

	revoked, err := store.DeleteGrant(ctx, task.ID, bob.ID, models.PermissionUpdate)
	if err != nil {
		t.Fatalf("revoke update: %v", err)
	}
	if revoked.ID != update.ID {
		t.Fatalf("revoked %+v, want update grant", revoked)
	}

	revoked, err = store.DeleteGrant(ctx, task.ID, bob.ID, "")
	if err != nil {
		t.Fatalf("revoke any: %v", err)
	}
	if revoked.ID != read.ID {
		t.Fatalf("revoked %+v, want read grant", revoked)
	}

	if _, err := store.DeleteGrant(ctx, task.ID, bob.ID, ""); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("revoke missing: got %v, want ErrNotFound", err)
	}
}

func TestCreateGrantUnknownUser(t *testing.T) {
	store := openTempStore(t)
	alice := mustCreateUser(t, store, "alice")
	task := mustCreateTask(t, store, alice.ID, "t")

	_, err := store.CreateGrant(context.Background(), models.Permission{TaskID: task.ID, UserID: 404, Type: models.PermissionRead})
	if !errors.Is(err, storage.ErrReferenceNotFound) {
		t.Fatalf("got %v, want ErrReferenceNotFound", err)
	}
}

func TestDeleteTaskCascadesGrants(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, store, "alice")
	bob := mustCreateUser(t, store, "bob")
	task := mustCreateTask(t, store, alice.ID, "t")

	if _, err := store.CreateGrant(ctx, models.Permission{TaskID: task.ID, UserID: bob.ID, Type: models.PermissionRead}); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if _, err := store.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}

	grants, err := store.ListGrants(ctx, task.ID, bob.ID)
	if err != nil {
		t.Fatalf("list grants: %v", err)
	}
	if len(grants) != 0 {
		t.Fatalf("expected grants to be removed, got %+v", grants)
	}
}

func TestInTxRollsBack(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	errAbort := errors.New("abort")

	err := store.InTx(ctx, func(repo storage.Repository) error {
		if _, err := repo.CreateUser(ctx, "ghost", "hash"); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("got %v, want errAbort", err)
	}

	if _, err := store.GetUserByUsername(ctx, "ghost"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound after rollback", err)
	}
}

func TestInTxCommits(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	err := store.InTx(ctx, func(repo storage.Repository) error {
		_, err := repo.CreateUser(ctx, "alice", "hash")
		return err
	})
	if err != nil {
		t.Fatalf("in tx: %v", err)
	}

	if _, err := store.GetUserByUsername(ctx, "alice"); err != nil {
		t.Fatalf("get committed user: %v", err)
	}
}

func assertTaskIDs(t *testing.T, tasks []*models.Task, want ...int64) {
	t.Helper()
	if len(tasks) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(tasks), len(want))
	}
	for i, task := range tasks {
		if task.ID != want[i] {
			t.Fatalf("task[%d].ID = %d, want %d", i, task.ID, want[i])
		}
	}
}
