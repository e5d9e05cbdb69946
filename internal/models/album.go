// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Album is a titled collection of images. Like articles, albums carry a
// lazily assigned 6-digit code and a stable slug.
type Album struct {
	ID                int64     `json:"id"`
	Code              string    `json:"code"`
	Slug              string    `json:"slug"`
	Title             string    `json:"title"`
	CoverImageKey     string    `json:"cover_image_key,omitempty"`
	OrderInstructions string    `json:"order_instructions"`
	CreatedAt         time.Time `json:"created_at"`

	// Virtual fields populated by store methods.
	CategoryIDs []int64      `json:"category_ids,omitempty"`
	Categories  []Category   `json:"categories,omitempty"`
	Images      []AlbumImage `json:"images,omitempty"`
}

// Address returns the album's code and slug.
func (a *Album) Address() (code, slug string) {
	return a.Code, a.Slug
}

// AlbumImage is a single picture inside an album, ordered by SortOrder then ID.
type AlbumImage struct {
	ID        int64  `json:"id"`
	AlbumID   int64  `json:"album_id"`
	ImageKey  string `json:"image_key"`
	Caption   string `json:"caption"`
	SortOrder int    `json:"sort_order"`
}
