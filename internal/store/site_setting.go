// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"azincms/internal/models"
)

// SiteSettingStore manages the single site settings row.
type SiteSettingStore struct {
	db *sql.DB
}

// NewSiteSettingStore returns a new SiteSettingStore backed by the given database.
func NewSiteSettingStore(db *sql.DB) *SiteSettingStore {
	return &SiteSettingStore{db: db}
}

// Get returns the settings row, or the defaults when it has not been saved
// yet. Empty fields are filled from the defaults too.
func (s *SiteSettingStore) Get() (models.SiteSettings, error) {
	var st models.SiteSettings
	err := s.db.QueryRow(`
		SELECT site_name, about_text, copyright_text, updated_at
		FROM site_settings WHERE key = $1
	`, models.SiteSettingsKey).Scan(&st.SiteName, &st.AboutText, &st.CopyrightText, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.DefaultSiteSettings(), nil
	}
	if err != nil {
		return models.DefaultSiteSettings(), fmt.Errorf("get site settings: %w", err)
	}
	return st.WithDefaults(), nil
}

// Save upserts the settings row.
func (s *SiteSettingStore) Save(st models.SiteSettings) error {
	_, err := s.db.Exec(`
		INSERT INTO site_settings (key, site_name, about_text, copyright_text, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (key)
		DO UPDATE SET site_name = EXCLUDED.site_name,
		              about_text = EXCLUDED.about_text,
		              copyright_text = EXCLUDED.copyright_text,
		              updated_at = EXCLUDED.updated_at`,
		models.SiteSettingsKey, st.SiteName, st.AboutText, st.CopyrightText,
	)
	if err != nil {
		return fmt.Errorf("save site settings: %w", err)
	}
	return nil
}
