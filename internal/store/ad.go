// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"azincms/internal/models"
)

// AdStore manages ads and their impression and click events.
type AdStore struct {
	db *sql.DB
}

// NewAdStore returns a new AdStore.
func NewAdStore(db *sql.DB) *AdStore {
	return &AdStore{db: db}
}

const adColumns = `id, name, ad_group, image_key, link_url, external_code, is_active,
	start_date, end_date, max_impressions, impressions_count, clicks_count,
	created_at, updated_at`

func scanAd(scanner interface{ Scan(...any) error }) (*models.Ad, error) {
	var a models.Ad
	var maxImp sql.NullInt64
	err := scanner.Scan(
		&a.ID, &a.Name, &a.Group, &a.ImageKey, &a.LinkURL, &a.ExternalCode, &a.IsActive,
		&a.StartDate, &a.EndDate, &maxImp, &a.ImpressionsCount, &a.ClicksCount,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if maxImp.Valid {
		n := int(maxImp.Int64)
		a.MaxImpressions = &n
	}
	return &a, nil
}

// List returns every ad, newest first.
func (s *AdStore) List() ([]models.Ad, error) {
	rows, err := s.db.Query(`SELECT ` + adColumns + ` FROM ads ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	defer rows.Close()

	var items []models.Ad
	for rows.Next() {
		a, err := scanAd(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ad: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// ActiveByGroup returns the ads showable at now, grouped by slot and
// newest first. The scheduling and cap rules live in Ad.IsCurrentlyActive.
func (s *AdStore) ActiveByGroup(now time.Time) (map[models.AdGroup][]models.Ad, error) {
	rows, err := s.db.Query(`
		SELECT ` + adColumns + ` FROM ads
		WHERE is_active
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list active ads: %w", err)
	}
	defer rows.Close()

	groups := make(map[models.AdGroup][]models.Ad, len(models.AdGroups))
	for rows.Next() {
		a, err := scanAd(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ad: %w", err)
		}
		if a.IsCurrentlyActive(now) {
			groups[a.Group] = append(groups[a.Group], *a)
		}
	}
	return groups, rows.Err()
}

// FindByID retrieves an ad. Returns nil if not found.
func (s *AdStore) FindByID(id int64) (*models.Ad, error) {
	a, err := scanAd(s.db.QueryRow(`SELECT `+adColumns+` FROM ads WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find ad: %w", err)
	}
	return a, nil
}

// Create inserts an ad.
func (s *AdStore) Create(a *models.Ad) (*models.Ad, error) {
	created, err := scanAd(s.db.QueryRow(`
		INSERT INTO ads (name, ad_group, image_key, link_url, external_code, is_active,
		                 start_date, end_date, max_impressions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+adColumns,
		a.Name, a.Group, a.ImageKey, a.LinkURL, a.ExternalCode, a.IsActive,
		a.StartDate, a.EndDate, a.MaxImpressions,
	))
	if err != nil {
		return nil, fmt.Errorf("create ad: %w", err)
	}
	return created, nil
}

// Update modifies an ad. Counters are left alone.
func (s *AdStore) Update(a *models.Ad) error {
	_, err := s.db.Exec(`
		UPDATE ads SET
			name = $1, ad_group = $2, image_key = $3, link_url = $4, external_code = $5,
			is_active = $6, start_date = $7, end_date = $8, max_impressions = $9,
			updated_at = NOW()
		WHERE id = $10
	`, a.Name, a.Group, a.ImageKey, a.LinkURL, a.ExternalCode,
		a.IsActive, a.StartDate, a.EndDate, a.MaxImpressions, a.ID)
	if err != nil {
		return fmt.Errorf("update ad: %w", err)
	}
	return nil
}

// Delete removes an ad and its events.
func (s *AdStore) Delete(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM ads WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete ad: %w", err)
	}
	return nil
}

// RecordImpressions counts one view for each ad and logs a view event. It
// returns the ids of ads whose impression cap was reached by this call,
// so pages still showing them can be dropped from the cache.
func (s *AdStore) RecordImpressions(ids []int64, ip string) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("record impressions: begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`
		UPDATE ads SET impressions_count = impressions_count + 1
		WHERE id = ANY($1)
		RETURNING id, impressions_count = max_impressions
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("record impressions: %w", err)
	}
	var capped []int64
	for rows.Next() {
		var (
			id      int64
			reached sql.NullBool
		)
		if err := rows.Scan(&id, &reached); err != nil {
			rows.Close()
			return nil, fmt.Errorf("record impressions: scan: %w", err)
		}
		if reached.Valid && reached.Bool {
			capped = append(capped, id)
		}
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("record impressions: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("record impressions: %w", err)
	}

	for _, id := range ids {
		if err := insertEvent(tx, id, models.AdEventView, ip); err != nil {
			return nil, fmt.Errorf("record impressions: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("record impressions: commit: %w", err)
	}
	return capped, nil
}

// RecordClick counts a click and returns the ad so the caller can redirect
// to its link. Returns nil if the ad does not exist.
func (s *AdStore) RecordClick(id int64, ip string) (*models.Ad, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("record click: begin tx: %w", err)
	}
	defer tx.Rollback()

	a, err := scanAd(tx.QueryRow(`
		UPDATE ads SET clicks_count = clicks_count + 1
		WHERE id = $1
		RETURNING `+adColumns, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("record click: %w", err)
	}
	if err := insertEvent(tx, id, models.AdEventClick, ip); err != nil {
		return nil, fmt.Errorf("record click: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("record click: commit: %w", err)
	}
	return a, nil
}

// Events returns the most recent events of an ad.
func (s *AdStore) Events(adID int64, limit int) ([]models.AdEvent, error) {
	rows, err := s.db.Query(`
		SELECT id, ad_id, kind, ip_address, created_at
		FROM ad_events WHERE ad_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, adID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ad events: %w", err)
	}
	defer rows.Close()

	var items []models.AdEvent
	for rows.Next() {
		var e models.AdEvent
		if err := rows.Scan(&e.ID, &e.AdID, &e.Kind, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ad event: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func insertEvent(tx *sql.Tx, adID int64, kind models.AdEventKind, ip string) error {
	_, err := tx.Exec(`
		INSERT INTO ad_events (id, ad_id, kind, ip_address)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), adID, kind, ip)
	return err
}
