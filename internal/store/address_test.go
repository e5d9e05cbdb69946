package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"azincms/internal/models"
)

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "%hello%"},
		{"50%", `%50\%%`},
		{"a_b", `%a\_b%`},
		{`c:\x`, `%c:\\x%`},
		{"سلام", "%سلام%"},
	}
	for _, tt := range tests {
		if got := likePattern(tt.in); got != tt.want {
			t.Errorf("likePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	if !isUniqueViolation(unique) {
		t.Error("23505 not recognized")
	}
	if !isUniqueViolation(fmt.Errorf("insert: %w", unique)) {
		t.Error("wrapped 23505 not recognized")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation treated as unique violation")
	}
	if isUniqueViolation(errors.New("boom")) || isUniqueViolation(nil) {
		t.Error("plain errors are not unique violations")
	}
}

func TestBuildMenuTree(t *testing.T) {
	id := func(n int64) *int64 { return &n }
	flat := []models.MenuItem{
		{ID: 1, Title: "home"},
		{ID: 2, Title: "albums"},
		{ID: 3, Title: "summer", ParentID: id(2)},
		{ID: 4, Title: "winter", ParentID: id(2)},
		{ID: 5, Title: "orphan", ParentID: id(99)},
	}

	tree := buildTree(flat, nil)
	if len(tree) != 2 {
		t.Fatalf("roots = %d, want 2", len(tree))
	}
	if tree[1].Title != "albums" || len(tree[1].Children) != 2 {
		t.Errorf("albums children = %+v", tree[1].Children)
	}
	if tree[1].Children[0].Title != "summer" {
		t.Errorf("child order not preserved: %+v", tree[1].Children)
	}
}

func TestWithAlbums(t *testing.T) {
	got := WithAlbums([]models.Category{
		{Slug: "posts-only", PostCount: 3},
		{Slug: "mixed", PostCount: 1, AlbumCount: 2},
		{Slug: "albums", AlbumCount: 1},
	})
	if len(got) != 2 || got[0].Slug != "mixed" || got[1].Slug != "albums" {
		t.Errorf("WithAlbums() = %+v", got)
	}
}

func TestNullable(t *testing.T) {
	if nullable("").Valid {
		t.Error("empty string must map to NULL")
	}
	if v := nullable("000123"); !v.Valid || v.String != "000123" {
		t.Errorf("nullable() = %+v", v)
	}
}
