package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/izposoja/internal/db"
)

func TestTokenRevocation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	isRevoked := func(jti string) bool {
		t.Helper()
		revoked, err := IsTokenRevoked(ctx, database, jti)
		if err != nil {
			t.Fatalf("IsTokenRevoked(%s): %v", jti, err)
		}
		return revoked
	}

	if isRevoked("a") {
		t.Error("expected fresh token not to be revoked")
	}

	exp := time.Now().Add(time.Hour)
	for range 2 {
		if err := RevokeToken(ctx, database, "a", exp); err != nil {
			t.Fatalf("RevokeToken: %v", err)
		}
	}
	if !isRevoked("a") {
		t.Error("expected token to be revoked")
	}
	if isRevoked("b") {
		t.Error("revoking one token affected another")
	}
}

func TestPurgeRevokedTokens(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	RevokeToken(ctx, database, "expired", now.Add(-time.Minute))
	RevokeToken(ctx, database, "live", now.Add(time.Hour))

	n, err := PurgeRevokedTokens(ctx, database, now)
	if err != nil {
		t.Fatalf("PurgeRevokedTokens: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 purged entry, got %d", n)
	}
	if revoked, _ := IsTokenRevoked(ctx, database, "live"); !revoked {
		t.Error("purge removed a token that has not expired")
	}
}
