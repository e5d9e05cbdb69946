// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"azincms/internal/code"
	"azincms/internal/models"
	"azincms/internal/slug"
)

// ErrDuplicate is returned when an explicitly supplied code or slug is
// already taken.
var ErrDuplicate = errors.New("duplicate code or slug")

const articlesTable = "articles"

const articleColumns = `a.id, a.code, a.slug, a.title, a.content, a.body_format,
	a.short_description, a.summary, a.featured_image_key, a.cover_key,
	a.created_at, a.updated_at`

// ArticleStore handles all article-related database operations.
type ArticleStore struct {
	db    *sql.DB
	addr  addressTable
	codes *code.Generator
	slugs *slug.Resolver
}

// NewArticleStore creates an ArticleStore. obs may be nil.
func NewArticleStore(db *sql.DB, obs code.Observer) *ArticleStore {
	return &ArticleStore{
		db:    db,
		addr:  addressTable{db: db, table: articlesTable},
		codes: code.NewGenerator(articlesTable, obs),
		slugs: slug.NewResolver("post"),
	}
}

// CodeExists implements code.Checker.
func (s *ArticleStore) CodeExists(c string) (bool, error) { return s.addr.CodeExists(c) }

// CodeCount implements code.Checker.
func (s *ArticleStore) CodeCount() (int, error) { return s.addr.CodeCount() }

// SlugExists implements slug.Checker.
func (s *ArticleStore) SlugExists(sl string, excludeID int64) (bool, error) {
	return s.addr.SlugExists(sl, excludeID)
}

// MissingCodes returns ids of articles saved before codes existed.
func (s *ArticleStore) MissingCodes() ([]int64, error) { return s.addr.MissingCodes() }

// AssignCode gives article id a code if it has none.
func (s *ArticleStore) AssignCode(id int64) (string, error) { return s.addr.AssignCode(s.codes, id) }

func scanArticle(scanner interface{ Scan(...any) error }) (*models.Article, error) {
	var a models.Article
	var c sql.NullString
	err := scanner.Scan(
		&a.ID, &c, &a.Slug, &a.Title, &a.Content, &a.BodyFormat,
		&a.ShortDescription, &a.Summary, &a.FeaturedImageKey, &a.CoverKey,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Code = c.String
	return &a, nil
}

func (s *ArticleStore) queryList(query string, args ...any) ([]models.Article, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.loadCategories(items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *ArticleStore) findOne(query string, arg any) (*models.Article, error) {
	a, err := scanArticle(s.db.QueryRow(query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	items := []models.Article{*a}
	if err := s.loadCategories(items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// FindByCode retrieves an article by its public code. Returns nil if not found.
func (s *ArticleStore) FindByCode(c string) (*models.Article, error) {
	a, err := s.findOne(`SELECT `+articleColumns+` FROM articles a WHERE a.code = $1`, c)
	if err != nil {
		return nil, fmt.Errorf("find article by code: %w", err)
	}
	return a, nil
}

// FindByID retrieves an article by its internal id. Returns nil if not found.
func (s *ArticleStore) FindByID(id int64) (*models.Article, error) {
	a, err := s.findOne(`SELECT `+articleColumns+` FROM articles a WHERE a.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

// ListRecent returns the newest articles, at most limit.
func (s *ArticleStore) ListRecent(limit int) ([]models.Article, error) {
	items, err := s.queryList(`
		SELECT `+articleColumns+`
		FROM articles a
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent articles: %w", err)
	}
	return items, nil
}

// ListByCategory returns the newest articles in a category, at most limit.
func (s *ArticleStore) ListByCategory(categoryID int64, limit int) ([]models.Article, error) {
	items, err := s.queryList(`
		SELECT `+articleColumns+`
		FROM articles a
		JOIN article_categories ac ON ac.article_id = a.id
		WHERE ac.category_id = $1
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $2
	`, categoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("list articles by category: %w", err)
	}
	return items, nil
}

// Search matches q case-insensitively against title, content and short
// description. A non-empty scope restricts results to that category slug.
func (s *ArticleStore) Search(q, scope string, limit int) ([]models.Article, error) {
	items, err := s.queryList(`
		SELECT `+articleColumns+`
		FROM articles a
		WHERE (a.title ILIKE $1 ESCAPE '\' OR a.content ILIKE $1 ESCAPE '\'
		       OR a.short_description ILIKE $1 ESCAPE '\')
		  AND ($2 = '' OR EXISTS (
		      SELECT 1 FROM article_categories ac
		      JOIN categories c ON c.id = ac.category_id
		      WHERE ac.article_id = a.id AND c.slug = $2))
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $3
	`, likePattern(q), scope, limit)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	return items, nil
}

// Create inserts an article. Code and slug are generated when empty; a
// generated value that loses a race to a concurrent writer is regenerated.
func (s *ArticleStore) Create(a *models.Article) (*models.Article, error) {
	in := *a
	if in.BodyFormat == "" {
		in.BodyFormat = models.BodyFormatHTML
	}
	genCode, genSlug := in.Code == "", in.Slug == ""

	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		if genCode {
			c, err := s.codes.Generate(s)
			if err != nil {
				return nil, fmt.Errorf("create article: %w", err)
			}
			in.Code = c
		}
		if genSlug {
			sl, err := s.slugs.Resolve(in.Title, s, 0)
			if err != nil {
				return nil, fmt.Errorf("create article: %w", err)
			}
			in.Slug = sl
		}

		created, err := s.insert(&in)
		if isUniqueViolation(err) {
			if !genCode && !genSlug {
				return nil, fmt.Errorf("create article: %w", ErrDuplicate)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create article: %w", err)
		}
		return created, nil
	}
	return nil, fmt.Errorf("create article: %w", ErrDuplicate)
}

func (s *ArticleStore) insert(a *models.Article) (*models.Article, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	created, err := scanArticle(tx.QueryRow(`
		INSERT INTO articles AS a (code, slug, title, content, body_format,
		                           short_description, summary, featured_image_key, cover_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+articleColumns,
		nullable(a.Code), a.Slug, a.Title, a.Content, a.BodyFormat,
		a.ShortDescription, a.Summary, a.FeaturedImageKey, a.CoverKey,
	))
	if err != nil {
		return nil, err
	}
	if err := setCategories(tx, "article_categories", "article_id", created.ID, a.CategoryIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	created.CategoryIDs = a.CategoryIDs
	return created, nil
}

// Update modifies an article's editable fields. Code and slug are never
// rewritten; an article that predates codes gets one here.
func (s *ArticleStore) Update(a *models.Article) error {
	if a.BodyFormat == "" {
		a.BodyFormat = models.BodyFormatHTML
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("update article: begin tx: %w", err)
	}
	defer tx.Rollback()

	var stored sql.NullString
	err = tx.QueryRow(`
		UPDATE articles SET
			title = $1, content = $2, body_format = $3, short_description = $4,
			summary = $5, featured_image_key = $6, cover_key = $7,
			updated_at = NOW()
		WHERE id = $8
		RETURNING code
	`, a.Title, a.Content, a.BodyFormat, a.ShortDescription,
		a.Summary, a.FeaturedImageKey, a.CoverKey, a.ID,
	).Scan(&stored)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	if a.CategoryIDs != nil {
		if err := setCategories(tx, "article_categories", "article_id", a.ID, a.CategoryIDs); err != nil {
			return fmt.Errorf("update article: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update article: commit: %w", err)
	}

	if !stored.Valid {
		if _, err := s.AssignCode(a.ID); err != nil {
			return fmt.Errorf("update article: %w", err)
		}
	}
	return nil
}

// Delete removes an article by ID.
func (s *ArticleStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// loadCategories fills CategoryIDs and Categories for every item.
func (s *ArticleStore) loadCategories(items []models.Article) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	byOwner, err := categoriesFor(s.db, "article_categories", "article_id", ids)
	if err != nil {
		return err
	}
	for i := range items {
		for _, c := range byOwner[items[i].ID] {
			items[i].CategoryIDs = append(items[i].CategoryIDs, c.ID)
			items[i].Categories = append(items[i].Categories, c)
		}
	}
	return nil
}
