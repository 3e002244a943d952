package database

import (
	"context"
	"errors"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema twice: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		t.Fatalf("query users table: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty table, got %d rows", count)
	}
}

func TestRebind(t *testing.T) {
	sqlite := openTestDB(t)
	if got := sqlite.Rebind("SELECT * FROM users WHERE id = ? AND email = ?"); got != "SELECT * FROM users WHERE id = ? AND email = ?" {
		t.Fatalf("sqlite queries must keep ? placeholders, got %q", got)
	}

	pg := &DB{driver: DriverPostgres}
	got := pg.Rebind("INSERT INTO users (a, b, c) VALUES (?, ?, ?)")
	want := "INSERT INTO users (a, b, c) VALUES ($1, $2, $3)"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	insert := `INSERT INTO users (username, email, password, created_at, updated_at)
		VALUES (?, ?, ?, datetime('now'), datetime('now'))`
	if _, err := db.ExecContext(ctx, insert, "alice", "alice@example.com", "x"); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	_, err := db.ExecContext(ctx, insert, "alice", "other@example.com", "x")
	if err == nil {
		t.Fatal("expected a unique violation")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation to be recognized: %v", err)
	}

	if IsUniqueViolation(errors.New("connection refused")) {
		t.Fatal("unrelated errors must not be treated as unique violations")
	}
	if IsUniqueViolation(nil) {
		t.Fatal("nil is not a unique violation")
	}
}
