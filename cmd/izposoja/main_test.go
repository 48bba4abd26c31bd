package main

import (
	"context"
	"flag"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-d", "test.db", "-addr", ":9000", "-r", "3", "-v"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if opts.dbPath != "test.db" || opts.addr != ":9000" || opts.loginRate != 3 || !opts.verbose {
		t.Errorf("unexpected options: %+v", opts)
	}

	opts, err = parseFlags(nil)
	if err != nil {
		t.Fatalf("parseFlags defaults: %v", err)
	}
	if opts.dbPath != "izposoja.sqlite3" || opts.adminUser != "Admin" || opts.loginRate != 10 {
		t.Errorf("unexpected defaults: %+v", opts)
	}

	if _, err := parseFlags([]string{"-r", "-1"}); err == nil {
		t.Error("expected negative login rate to be rejected")
	}
	if _, err := parseFlags([]string{"-h"}); err != flag.ErrHelp {
		t.Errorf("expected ErrHelp, got %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	database := db.NewTestDB(t)

	password, err := ensureAdmin(ctx, database, "root")
	if err != nil {
		t.Fatalf("ensureAdmin: %v", err)
	}
	if len(password) != 16 {
		t.Errorf("expected 16 character password, got %d", len(password))
	}

	u, err := store.GetUserByUsername(ctx, database, "root")
	if err != nil || u == nil {
		t.Fatalf("expected admin user, got %v, %v", u, err)
	}
	if !u.HasRole(model.RoleAdmin) {
		t.Errorf("expected admin role, got %v", u.Roles)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		t.Error("stored hash does not match printed password")
	}

	// A second start must not create another admin.
	again, err := ensureAdmin(ctx, database, "other")
	if err != nil {
		t.Fatalf("ensureAdmin: %v", err)
	}
	if again != "" {
		t.Error("expected no new admin on a populated database")
	}
	if u, _ := store.GetUserByUsername(ctx, database, "other"); u != nil {
		t.Error("second admin was created")
	}
}

func TestPurgeRevokedTokensStopsWithContext(t *testing.T) {
	database := db.NewTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())

	store.RevokeToken(ctx, database, "old", time.Now().Add(-time.Hour))

	done := make(chan struct{})
	go func() {
		purgeRevokedTokens(ctx, database, time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		revoked, err := store.IsTokenRevoked(context.Background(), database, "old")
		if err != nil {
			t.Fatalf("IsTokenRevoked: %v", err)
		}
		if !revoked {
			break
		}
		select {
		case <-deadline:
			t.Fatal("expired revocation was never purged")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("purge loop did not stop after cancel")
	}
}
