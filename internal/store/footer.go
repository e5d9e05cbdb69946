// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"azincms/internal/models"
)

// FooterStore manages footer links and icons.
type FooterStore struct {
	db *sql.DB
}

// NewFooterStore returns a new FooterStore.
func NewFooterStore(db *sql.DB) *FooterStore {
	return &FooterStore{db: db}
}

// VisibleLinks returns the shown footer links in display order.
func (s *FooterStore) VisibleLinks() ([]models.FooterLink, error) {
	rows, err := s.db.Query(`
		SELECT id, title, url, sort_order, show
		FROM footer_links WHERE show
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list footer links: %w", err)
	}
	defer rows.Close()

	var items []models.FooterLink
	for rows.Next() {
		var l models.FooterLink
		if err := rows.Scan(&l.ID, &l.Title, &l.URL, &l.SortOrder, &l.Show); err != nil {
			return nil, fmt.Errorf("scan footer link: %w", err)
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

// VisibleIcons returns the shown footer icons in display order.
func (s *FooterStore) VisibleIcons() ([]models.FooterIcon, error) {
	rows, err := s.db.Query(`
		SELECT id, title, image_key, url, icon_class, html, sort_order, show
		FROM footer_icons WHERE show
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list footer icons: %w", err)
	}
	defer rows.Close()

	var items []models.FooterIcon
	for rows.Next() {
		var i models.FooterIcon
		if err := rows.Scan(&i.ID, &i.Title, &i.ImageKey, &i.URL, &i.IconClass, &i.HTML, &i.SortOrder, &i.Show); err != nil {
			return nil, fmt.Errorf("scan footer icon: %w", err)
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// CreateLink inserts a footer link.
func (s *FooterStore) CreateLink(l *models.FooterLink) (*models.FooterLink, error) {
	result := &models.FooterLink{}
	err := s.db.QueryRow(`
		INSERT INTO footer_links (title, url, sort_order, show)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, url, sort_order, show
	`, l.Title, l.URL, l.SortOrder, l.Show).Scan(
		&result.ID, &result.Title, &result.URL, &result.SortOrder, &result.Show,
	)
	if err != nil {
		return nil, fmt.Errorf("create footer link: %w", err)
	}
	return result, nil
}

// DeleteLink removes a footer link.
func (s *FooterStore) DeleteLink(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM footer_links WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete footer link: %w", err)
	}
	return nil
}

// CreateIcon inserts a footer icon.
func (s *FooterStore) CreateIcon(i *models.FooterIcon) (*models.FooterIcon, error) {
	result := &models.FooterIcon{}
	err := s.db.QueryRow(`
		INSERT INTO footer_icons (title, image_key, url, icon_class, html, sort_order, show)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, title, image_key, url, icon_class, html, sort_order, show
	`, i.Title, i.ImageKey, i.URL, i.IconClass, i.HTML, i.SortOrder, i.Show).Scan(
		&result.ID, &result.Title, &result.ImageKey, &result.URL,
		&result.IconClass, &result.HTML, &result.SortOrder, &result.Show,
	)
	if err != nil {
		return nil, fmt.Errorf("create footer icon: %w", err)
	}
	return result, nil
}

// DeleteIcon removes a footer icon.
func (s *FooterStore) DeleteIcon(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM footer_icons WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete footer icon: %w", err)
	}
	return nil
}
