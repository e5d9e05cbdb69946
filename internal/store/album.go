// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"azincms/internal/code"
	"azincms/internal/models"
	"azincms/internal/slug"
)

const albumsTable = "albums"

const albumColumns = `l.id, l.code, l.slug, l.title, l.cover_image_key, l.order_instructions, l.created_at`

// AlbumStore handles albums and their images.
type AlbumStore struct {
	db    *sql.DB
	addr  addressTable
	codes *code.Generator
	slugs *slug.Resolver
}

// NewAlbumStore creates an AlbumStore. obs may be nil.
func NewAlbumStore(db *sql.DB, obs code.Observer) *AlbumStore {
	return &AlbumStore{
		db:    db,
		addr:  addressTable{db: db, table: albumsTable},
		codes: code.NewGenerator(albumsTable, obs),
		slugs: slug.NewResolver("album"),
	}
}

// CodeExists implements code.Checker.
func (s *AlbumStore) CodeExists(c string) (bool, error) { return s.addr.CodeExists(c) }

// CodeCount implements code.Checker.
func (s *AlbumStore) CodeCount() (int, error) { return s.addr.CodeCount() }

// SlugExists implements slug.Checker.
func (s *AlbumStore) SlugExists(sl string, excludeID int64) (bool, error) {
	return s.addr.SlugExists(sl, excludeID)
}

// MissingCodes returns ids of albums without a code.
func (s *AlbumStore) MissingCodes() ([]int64, error) { return s.addr.MissingCodes() }

// AssignCode gives album id a code if it has none.
func (s *AlbumStore) AssignCode(id int64) (string, error) { return s.addr.AssignCode(s.codes, id) }

func scanAlbum(scanner interface{ Scan(...any) error }) (*models.Album, error) {
	var a models.Album
	var c sql.NullString
	err := scanner.Scan(&a.ID, &c, &a.Slug, &a.Title, &a.CoverImageKey, &a.OrderInstructions, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Code = c.String
	return &a, nil
}

func (s *AlbumStore) queryList(query string, args ...any) ([]models.Album, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Album
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
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

func (s *AlbumStore) findOne(query string, arg any) (*models.Album, error) {
	a, err := scanAlbum(s.db.QueryRow(query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	items := []models.Album{*a}
	if err := s.loadCategories(items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// FindBySlug retrieves an album by slug. Returns nil if not found.
func (s *AlbumStore) FindBySlug(sl string) (*models.Album, error) {
	a, err := s.findOne(`SELECT `+albumColumns+` FROM albums l WHERE l.slug = $1`, sl)
	if err != nil {
		return nil, fmt.Errorf("find album by slug: %w", err)
	}
	return a, nil
}

// FindByCode retrieves an album by code. Returns nil if not found.
func (s *AlbumStore) FindByCode(c string) (*models.Album, error) {
	a, err := s.findOne(`SELECT `+albumColumns+` FROM albums l WHERE l.code = $1`, c)
	if err != nil {
		return nil, fmt.Errorf("find album by code: %w", err)
	}
	return a, nil
}

// FindByID retrieves an album by id. Returns nil if not found.
func (s *AlbumStore) FindByID(id int64) (*models.Album, error) {
	a, err := s.findOne(`SELECT `+albumColumns+` FROM albums l WHERE l.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("find album by id: %w", err)
	}
	return a, nil
}

// ListRecent returns the newest albums, at most limit.
func (s *AlbumStore) ListRecent(limit int) ([]models.Album, error) {
	items, err := s.queryList(`
		SELECT `+albumColumns+`
		FROM albums l
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent albums: %w", err)
	}
	return items, nil
}

// ListByCategory returns the newest albums in a category, at most limit.
func (s *AlbumStore) ListByCategory(categoryID int64, limit int) ([]models.Album, error) {
	items, err := s.queryList(`
		SELECT `+albumColumns+`
		FROM albums l
		JOIN album_categories lc ON lc.album_id = l.id
		WHERE lc.category_id = $1
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $2
	`, categoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("list albums by category: %w", err)
	}
	return items, nil
}

// Search matches q case-insensitively against title and order
// instructions, optionally restricted to a category slug.
func (s *AlbumStore) Search(q, scope string, limit int) ([]models.Album, error) {
	items, err := s.queryList(`
		SELECT `+albumColumns+`
		FROM albums l
		WHERE (l.title ILIKE $1 ESCAPE '\' OR l.order_instructions ILIKE $1 ESCAPE '\')
		  AND ($2 = '' OR EXISTS (
		      SELECT 1 FROM album_categories lc
		      JOIN categories c ON c.id = lc.category_id
		      WHERE lc.album_id = l.id AND c.slug = $2))
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $3
	`, likePattern(q), scope, limit)
	if err != nil {
		return nil, fmt.Errorf("search albums: %w", err)
	}
	return items, nil
}

// Create inserts an album, generating code and slug when empty.
func (s *AlbumStore) Create(a *models.Album) (*models.Album, error) {
	in := *a
	genCode, genSlug := in.Code == "", in.Slug == ""

	for attempt := 1; attempt <= maxInsertAttempts; attempt++ {
		if genCode {
			c, err := s.codes.Generate(s)
			if err != nil {
				return nil, fmt.Errorf("create album: %w", err)
			}
			in.Code = c
		}
		if genSlug {
			sl, err := s.slugs.Resolve(in.Title, s, 0)
			if err != nil {
				return nil, fmt.Errorf("create album: %w", err)
			}
			in.Slug = sl
		}

		created, err := s.insert(&in)
		if isUniqueViolation(err) {
			if !genCode && !genSlug {
				return nil, fmt.Errorf("create album: %w", ErrDuplicate)
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create album: %w", err)
		}
		return created, nil
	}
	return nil, fmt.Errorf("create album: %w", ErrDuplicate)
}

func (s *AlbumStore) insert(a *models.Album) (*models.Album, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	created, err := scanAlbum(tx.QueryRow(`
		INSERT INTO albums AS l (code, slug, title, cover_image_key, order_instructions)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+albumColumns,
		nullable(a.Code), a.Slug, a.Title, a.CoverImageKey, a.OrderInstructions,
	))
	if err != nil {
		return nil, err
	}
	if err := setCategories(tx, "album_categories", "album_id", created.ID, a.CategoryIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	created.CategoryIDs = a.CategoryIDs
	return created, nil
}

// Update modifies title, cover, instructions and categories. Code and slug
// are never rewritten. A cleared cover falls back to the first image.
func (s *AlbumStore) Update(a *models.Album) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("update album: begin tx: %w", err)
	}
	defer tx.Rollback()

	var stored sql.NullString
	err = tx.QueryRow(`
		UPDATE albums SET title = $1, cover_image_key = $2, order_instructions = $3
		WHERE id = $4
		RETURNING code
	`, a.Title, a.CoverImageKey, a.OrderInstructions, a.ID).Scan(&stored)
	if err != nil {
		return fmt.Errorf("update album: %w", err)
	}
	if a.CategoryIDs != nil {
		if err := setCategories(tx, "album_categories", "album_id", a.ID, a.CategoryIDs); err != nil {
			return fmt.Errorf("update album: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update album: commit: %w", err)
	}

	if !stored.Valid {
		if _, err := s.AssignCode(a.ID); err != nil {
			return fmt.Errorf("update album: %w", err)
		}
	}
	return s.applyCover(a.ID)
}

// Delete removes an album and its images.
func (s *AlbumStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM albums WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete album: %w", err)
	}
	return nil
}

// Images returns up to limit images of an album, ordered by sort order then id.
func (s *AlbumStore) Images(albumID int64, limit int) ([]models.AlbumImage, error) {
	rows, err := s.db.Query(`
		SELECT id, album_id, image_key, caption, sort_order
		FROM album_images
		WHERE album_id = $1
		ORDER BY sort_order, id
		LIMIT $2
	`, albumID, limit)
	if err != nil {
		return nil, fmt.Errorf("list album images: %w", err)
	}
	defer rows.Close()

	var items []models.AlbumImage
	for rows.Next() {
		var img models.AlbumImage
		if err := rows.Scan(&img.ID, &img.AlbumID, &img.ImageKey, &img.Caption, &img.SortOrder); err != nil {
			return nil, fmt.Errorf("scan album image: %w", err)
		}
		items = append(items, img)
	}
	return items, rows.Err()
}

// AddImage appends an image to an album and, if the album has no cover
// yet, promotes its first image to cover.
func (s *AlbumStore) AddImage(img *models.AlbumImage) (*models.AlbumImage, error) {
	result := &models.AlbumImage{}
	err := s.db.QueryRow(`
		INSERT INTO album_images (album_id, image_key, caption, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, album_id, image_key, caption, sort_order
	`, img.AlbumID, img.ImageKey, img.Caption, img.SortOrder).Scan(
		&result.ID, &result.AlbumID, &result.ImageKey, &result.Caption, &result.SortOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("add album image: %w", err)
	}
	if err := s.applyCover(img.AlbumID); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteImage removes one image. It returns the removed image, or nil if
// there was none, so the caller can delete the stored object too.
func (s *AlbumStore) DeleteImage(albumID, imageID int64) (*models.AlbumImage, error) {
	img := &models.AlbumImage{}
	err := s.db.QueryRow(`
		DELETE FROM album_images WHERE id = $1 AND album_id = $2
		RETURNING id, album_id, image_key, caption, sort_order
	`, imageID, albumID).Scan(&img.ID, &img.AlbumID, &img.ImageKey, &img.Caption, &img.SortOrder)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete album image: %w", err)
	}
	return img, nil
}

// applyCover sets an empty cover to the album's first image, if any.
func (s *AlbumStore) applyCover(albumID int64) error {
	_, err := s.db.Exec(`
		UPDATE albums l SET cover_image_key = first.image_key
		FROM (
			SELECT image_key FROM album_images
			WHERE album_id = $1
			ORDER BY sort_order, id
			LIMIT 1
		) AS first
		WHERE l.id = $1 AND l.cover_image_key = ''
	`, albumID)
	if err != nil {
		return fmt.Errorf("apply album cover: %w", err)
	}
	return nil
}

// loadCategories fills CategoryIDs and Categories for every item.
func (s *AlbumStore) loadCategories(items []models.Album) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	byOwner, err := categoriesFor(s.db, "album_categories", "album_id", ids)
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
