package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("postgres://localhost/dorcas")

	if cfg.URL != "postgres://localhost/dorcas" {
		t.Errorf("unexpected URL %q", cfg.URL)
	}
	if cfg.MaxOpenConns <= 0 || cfg.MaxIdleConns > cfg.MaxOpenConns {
		t.Errorf("unexpected pool sizes open=%d idle=%d", cfg.MaxOpenConns, cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("unexpected lifetime %v", cfg.ConnMaxLifetime)
	}
}

func TestSchema_DeclaresPurgeIndexAndVersion(t *testing.T) {
	if !strings.Contains(schema, purgeIndex) {
		t.Errorf("schema.sql does not create %s", purgeIndex)
	}
	if !strings.Contains(schema, "VALUES (1)") {
		t.Errorf("schema.sql does not record revision %d", SchemaVersion)
	}
}

func TestDB_VerifySchema(t *testing.T) {
	db := setupTestDB(t)

	if err := db.VerifySchema(context.Background()); err != nil {
		t.Fatalf("VerifySchema after InitSchema: %v", err)
	}
}

func TestDB_VerifySchema_NewerRevision(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, `INSERT INTO token_schema_version (version) VALUES (99)`); err != nil {
		t.Fatalf("insert revision: %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.ExecContext(ctx, `DELETE FROM token_schema_version WHERE version = 99`)
	})

	err := db.VerifySchema(ctx)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
