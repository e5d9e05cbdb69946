// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Category groups articles and albums. Both name and slug are unique
// across the whole site.
type Category struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	SEOTitle       string    `json:"seo_title"`
	SEODescription string    `json:"seo_description"`
	CreatedAt      time.Time `json:"created_at"`

	// Virtual fields populated by store methods.
	PostCount  int `json:"post_count"`
	AlbumCount int `json:"album_count"`
}

// Count returns the number of posts and albums in the category.
func (c *Category) Count() int {
	return c.PostCount + c.AlbumCount
}
