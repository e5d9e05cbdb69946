// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the persisted entities of the site: articles,
// albums, categories, navigation menus, footer entries, ads and the
// site-wide settings row.
package models

import "time"

// BodyFormat tells how an article body is stored.
type BodyFormat string

const (
	BodyFormatHTML     BodyFormat = "html"
	BodyFormatMarkdown BodyFormat = "markdown"
)

// Article is a blog post. Code and Slug are assigned on first save and are
// never rewritten afterwards, even when the title changes.
type Article struct {
	ID               int64      `json:"id"`
	Code             string     `json:"code"`
	Slug             string     `json:"slug"`
	Title            string     `json:"title"`
	Content          string     `json:"content"`
	BodyFormat       BodyFormat `json:"body_format"`
	ShortDescription string     `json:"short_description"`
	Summary          string     `json:"summary"`
	FeaturedImageKey string     `json:"featured_image_key,omitempty"`
	CoverKey         string     `json:"cover_key,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	CategoryIDs []int64    `json:"category_ids,omitempty"`
	Categories  []Category `json:"categories,omitempty"`
}

// Address returns the code and slug that make up the article's public URL.
func (a *Article) Address() (code, slug string) {
	return a.Code, a.Slug
}

// HasAddress reports whether both parts of the canonical address are set.
func (a *Article) HasAddress() bool {
	return a.Code != "" && a.Slug != ""
}

// CategorySlugs returns the slugs of the loaded categories.
func (a *Article) CategorySlugs() []string {
	slugs := make([]string, 0, len(a.Categories))
	for _, c := range a.Categories {
		slugs = append(slugs, c.Slug)
	}
	return slugs
}
