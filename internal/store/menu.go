// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"azincms/internal/models"
)

// MenuStore manages navigation menus and their items.
type MenuStore struct {
	db *sql.DB
}

// NewMenuStore returns a new MenuStore.
func NewMenuStore(db *sql.DB) *MenuStore {
	return &MenuStore{db: db}
}

// FindEnabled returns the enabled menu with the given slug, with its
// visible items arranged as a tree. Returns nil if not found.
func (s *MenuStore) FindEnabled(slug string) (*models.Menu, error) {
	m := &models.Menu{}
	err := s.db.QueryRow(`
		SELECT id, name, slug, enabled FROM menus
		WHERE slug = $1 AND enabled
	`, slug).Scan(&m.ID, &m.Name, &m.Slug, &m.Enabled)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find menu: %w", err)
	}

	flat, err := s.items(m.ID, true)
	if err != nil {
		return nil, err
	}
	m.Items = buildTree(flat, nil)
	return m, nil
}

// items returns a menu's items in display order.
func (s *MenuStore) items(menuID int64, visibleOnly bool) ([]models.MenuItem, error) {
	rows, err := s.db.Query(`
		SELECT id, menu_id, parent_id, title, url, named_url, url_params,
		       sort_order, show, icon
		FROM menu_items
		WHERE menu_id = $1 AND (show OR NOT $2)
		ORDER BY sort_order, id
	`, menuID, visibleOnly)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var it models.MenuItem
		if err := rows.Scan(
			&it.ID, &it.MenuID, &it.ParentID, &it.Title, &it.URL, &it.NamedURL,
			&it.URLParams, &it.SortOrder, &it.Show, &it.Icon,
		); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// buildTree recursively nests items under their parents. Children of a
// hidden parent are dropped together with it.
func buildTree(flat []models.MenuItem, parentID *int64) []models.MenuItem {
	var result []models.MenuItem
	for _, it := range flat {
		if ptrEqual(it.ParentID, parentID) {
			it.Children = buildTree(flat, &it.ID)
			result = append(result, it)
		}
	}
	return result
}

// ptrEqual compares two *int64 for equality (both nil or same value).
func ptrEqual(a, b *int64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// Create inserts a menu.
func (s *MenuStore) Create(m *models.Menu) (*models.Menu, error) {
	result := &models.Menu{}
	err := s.db.QueryRow(`
		INSERT INTO menus (name, slug, enabled) VALUES ($1, $2, $3)
		RETURNING id, name, slug, enabled
	`, m.Name, m.Slug, m.Enabled).Scan(&result.ID, &result.Name, &result.Slug, &result.Enabled)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("create menu: %w", ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("create menu: %w", err)
	}
	return result, nil
}

// AddItem inserts a menu item.
func (s *MenuStore) AddItem(it *models.MenuItem) (*models.MenuItem, error) {
	result := &models.MenuItem{}
	err := s.db.QueryRow(`
		INSERT INTO menu_items (menu_id, parent_id, title, url, named_url, url_params,
		                        sort_order, show, icon)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, menu_id, parent_id, title, url, named_url, url_params,
		          sort_order, show, icon
	`, it.MenuID, it.ParentID, it.Title, it.URL, it.NamedURL, it.URLParams,
		it.SortOrder, it.Show, it.Icon,
	).Scan(
		&result.ID, &result.MenuID, &result.ParentID, &result.Title, &result.URL,
		&result.NamedURL, &result.URLParams, &result.SortOrder, &result.Show, &result.Icon,
	)
	if err != nil {
		return nil, fmt.Errorf("add menu item: %w", err)
	}
	return result, nil
}

// DeleteItem removes a menu item and its children.
func (s *MenuStore) DeleteItem(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM menu_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return nil
}
