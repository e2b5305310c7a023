package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestTxFromContext_Empty(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Error("expected nil transaction on a bare context")
	}
}

func TestTxFromContext_WrongValueType(t *testing.T) {
	ctx := context.WithValue(context.Background(), txKey, "not a tx")
	if tx := TxFromContext(ctx); tx != nil {
		t.Error("expected nil when context value is not a pgx.Tx")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	uniq := &pgconn.PgError{Code: "23505"}
	if !IsUniqueViolation(uniq) {
		t.Error("expected true for SQLSTATE 23505")
	}
	if !IsUniqueViolation(fmt.Errorf("insert: %w", uniq)) {
		t.Error("expected true through wrapping")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("expected false for a foreign key violation")
	}
	if IsUniqueViolation(errors.New("plain")) {
		t.Error("expected false for a non-pg error")
	}
}
