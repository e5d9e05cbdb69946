// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"azincms/internal/models"
	"azincms/internal/slug"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db    *sql.DB
	slugs *slug.Resolver
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db, slugs: slug.NewResolver("cat")}
}

const categoryColumns = `c.id, c.name, c.slug, c.description, c.seo_title, c.seo_description, c.created_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.SEOTitle, &c.SEODescription, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SlugExists implements slug.Checker.
func (s *CategoryStore) SlugExists(sl string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1 AND id <> $2)`, sl, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("category slug exists: %w", err)
	}
	return exists, nil
}

// List returns all categories ordered by name, with post and album counts.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT ` + categoryColumns + `,
		       (SELECT COUNT(*) FROM article_categories ac WHERE ac.category_id = c.id) AS post_count,
		       (SELECT COUNT(*) FROM album_categories lc WHERE lc.category_id = c.id) AS album_count
		FROM categories c
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description,
			&c.SEOTitle, &c.SEODescription, &c.CreatedAt,
			&c.PostCount, &c.AlbumCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// WithAlbums filters a counted category list down to the categories that
// hold at least one album. Used for the album tabs on the homepage.
func WithAlbums(cats []models.Category) []models.Category {
	var out []models.Category
	for _, c := range cats {
		if c.AlbumCount > 0 {
			out = append(out, c)
		}
	}
	return out
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id int64) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories c WHERE c.id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(sl string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories c WHERE c.slug = $1`, sl)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. An empty slug is derived
// from the name.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	in := *c
	genSlug := in.Slug == ""

	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		if genSlug {
			sl, err := s.slugs.Resolve(in.Name, s, 0)
			if err != nil {
				return nil, fmt.Errorf("create category: %w", err)
			}
			in.Slug = sl
		}

		row := s.db.QueryRow(`
			INSERT INTO categories AS c (name, slug, description, seo_title, seo_description)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+categoryColumns,
			in.Name, in.Slug, in.Description, in.SEOTitle, in.SEODescription,
		)
		result, err := scanCategory(row)
		if isUniqueViolation(err) {
			// The name is unique too, so only a generated slug is worth retrying.
			if !genSlug {
				return nil, fmt.Errorf("create category: %w", ErrDuplicate)
			}
			exists, cerr := s.nameExists(in.Name)
			if cerr != nil {
				return nil, fmt.Errorf("create category: %w", cerr)
			}
			if exists {
				return nil, fmt.Errorf("create category: %w", ErrDuplicate)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		return result, nil
	}
	return nil, fmt.Errorf("create category: %w", ErrDuplicate)
}

func (s *CategoryStore) nameExists(name string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}

// Update modifies an existing category. The slug is kept.
func (s *CategoryStore) Update(c *models.Category) error {
	_, err := s.db.Exec(`
		UPDATE categories SET
			name = $1, description = $2, seo_title = $3, seo_description = $4
		WHERE id = $5
	`, c.Name, c.Description, c.SEOTitle, c.SEODescription, c.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("update category: %w", ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category by ID. Content links are dropped with it.
func (s *CategoryStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
