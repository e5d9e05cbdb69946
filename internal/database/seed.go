package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"azincms/internal/models"
)

// Seed creates the rows every installation needs: the single site settings
// row and an enabled main menu with a link to the homepage. Existing rows
// are left untouched, so Seed is safe to run on every start.
func Seed(db *sql.DB) error {
	d := models.DefaultSiteSettings()
	res, err := db.Exec(`
		INSERT INTO site_settings (key, site_name, about_text, copyright_text)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO NOTHING
	`, models.SiteSettingsKey, d.SiteName, d.AboutText, d.CopyrightText)
	if err != nil {
		return fmt.Errorf("seed site settings: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Info("seeded default site settings")
	}

	var menuID int64
	err = db.QueryRow(`SELECT id FROM menus WHERE slug = $1`, models.MainMenuSlug).Scan(&menuID)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("seed check main menu: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRow(`
		INSERT INTO menus (name, slug, enabled) VALUES ($1, $2, TRUE)
		RETURNING id
	`, "منوی اصلی", models.MainMenuSlug).Scan(&menuID); err != nil {
		return fmt.Errorf("seed insert main menu: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO menu_items (menu_id, title, named_url, sort_order, show)
		VALUES ($1, $2, 'post_list', 0, TRUE), ($1, $3, 'search', 1, TRUE)
	`, menuID, "خانه", "جستجو"); err != nil {
		return fmt.Errorf("seed insert menu items: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("seeded main menu", "menu_id", menuID)
	return nil
}
