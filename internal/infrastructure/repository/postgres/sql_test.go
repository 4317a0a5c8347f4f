package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatal("sql.ErrNoRows must be not-found")
	}
	if !isNotFound(fmt.Errorf("get event: %w", sql.ErrNoRows)) {
		t.Fatal("wrapped sql.ErrNoRows must be not-found")
	}
	if isNotFound(errors.New("connection refused")) {
		t.Fatal("unrelated error must not be not-found")
	}
}

func TestIsUndefinedColumn(t *testing.T) {
	pqErr := &pq.Error{Code: "42703", Message: `column "box_finalized" of relation "events" does not exist`}
	if !isUndefinedColumn(pqErr) {
		t.Fatal("42703 must be detected")
	}
	if !isUndefinedColumn(fmt.Errorf("update event: %w", pqErr)) {
		t.Fatal("wrapped 42703 must be detected")
	}

	other := &pq.Error{Code: "42P01", Message: `relation "events" does not exist`}
	if isUndefinedColumn(other) {
		t.Fatal("other pq codes must not match")
	}
	if isUndefinedColumn(errors.New("column gone")) {
		t.Fatal("non-pq errors must not match")
	}
}
