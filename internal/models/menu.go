// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// MainMenuSlug is the slug of the menu rendered in the site header.
const MainMenuSlug = "main"

// Menu is a named navigation menu, e.g. "main" or "footer".
type Menu struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	Slug    string     `json:"slug"`
	Enabled bool       `json:"enabled"`
	Items   []MenuItem `json:"items,omitempty"`
}

// MenuItem is an entry in a menu. An item links either to a named route
// (NamedURL + URLParams) or to a raw URL.
type MenuItem struct {
	ID        int64  `json:"id"`
	MenuID    int64  `json:"menu_id"`
	ParentID  *int64 `json:"parent_id,omitempty"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	NamedURL  string `json:"named_url"`
	URLParams string `json:"url_params"`
	SortOrder int    `json:"sort_order"`
	Show      bool   `json:"show"`
	Icon      string `json:"icon,omitempty"`

	// Virtual fields.
	Href     string     `json:"href"`
	Children []MenuItem `json:"children,omitempty"`
}
