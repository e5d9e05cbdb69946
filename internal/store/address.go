// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// address.go holds the code and slug bookkeeping shared by the article and
// album stores. Uniqueness checks run outside the insert, so a concurrent
// writer can still claim the same value; the unique indexes catch that and
// the stores retry with fresh values.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"azincms/internal/code"
)

// maxInsertAttempts bounds retries after a unique violation on code or slug.
const maxInsertAttempts = 3

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a PostgreSQL unique violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// addressTable implements code.Checker and slug.Checker for one table.
// table is always a package constant, never user input.
type addressTable struct {
	db    *sql.DB
	table string
}

// CodeExists reports whether code is assigned in the table.
func (t addressTable) CodeExists(c string) (bool, error) {
	var exists bool
	err := t.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM `+t.table+` WHERE code = $1)`, c).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s code exists: %w", t.table, err)
	}
	return exists, nil
}

// CodeCount returns how many rows have a code.
func (t addressTable) CodeCount() (int, error) {
	var n int
	if err := t.db.QueryRow(`SELECT COUNT(code) FROM ` + t.table).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s code count: %w", t.table, err)
	}
	return n, nil
}

// SlugExists reports whether slug belongs to a row other than excludeID.
func (t addressTable) SlugExists(s string, excludeID int64) (bool, error) {
	var exists bool
	err := t.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM `+t.table+` WHERE slug = $1 AND id <> $2)`,
		s, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s slug exists: %w", t.table, err)
	}
	return exists, nil
}

// MissingCodes returns the ids of rows that have no code yet.
func (t addressTable) MissingCodes() ([]int64, error) {
	rows, err := t.db.Query(`SELECT id FROM ` + t.table + ` WHERE code IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s missing codes: %w", t.table, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", t.table, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AssignCode gives row id a fresh code if it has none. It returns the code
// the row ends up with, which is the existing one when already assigned.
func (t addressTable) AssignCode(gen *code.Generator, id int64) (string, error) {
	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		c, err := gen.Generate(t)
		if err != nil {
			return "", fmt.Errorf("assign %s code: %w", t.table, err)
		}

		var stored sql.NullString
		err = t.db.QueryRow(`
			UPDATE `+t.table+` SET code = COALESCE(code, $1)
			WHERE id = $2
			RETURNING code
		`, c, id).Scan(&stored)
		if err == sql.ErrNoRows {
			return "", nil
		}
		if isUniqueViolation(err) {
			slog.Warn("code collided on write, retrying", "table", t.table, "id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("assign %s code: %w", t.table, err)
		}
		return stored.String, nil
	}
	return "", fmt.Errorf("assign %s code: gave up after %d unique violations", t.table, maxInsertAttempts)
}

// likePattern escapes q for use in an ILIKE ... ESCAPE '\' match.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// nullable maps "" to NULL for optional unique columns.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
