// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package links builds display URLs for articles, albums, categories,
// images and menu items. Every builder degrades to a placeholder anchor
// instead of failing, so a page can always render.
package links

import (
	"errors"
	"log/slog"
	"net/url"

	"azincms/internal/locator"
	"azincms/internal/models"
)

// Placeholder is the non-navigating link used when no address can be built.
const Placeholder = "#"

// Observer is told about content that cannot produce its canonical URL.
type Observer interface {
	RecordIncompleteAddress(kind string)
}

// Builder turns entities into URLs.
type Builder struct {
	// FileURL maps an object storage key to a public URL. When nil, image
	// URLs are reported as absent.
	FileURL func(key string) string

	Observer Observer
}

// Article returns the canonical URL of a, the code-only URL when the slug
// is missing, or the placeholder.
func (b *Builder) Article(a *models.Article) string {
	if a == nil {
		return Placeholder
	}
	u, err := locator.CanonicalURL(a.Code, a.Slug)
	if err == nil {
		return u
	}
	b.incomplete("article", a.ID, err)
	if u, err := locator.CodeURL(a.Code); err == nil {
		return u
	}
	return Placeholder
}

// Album returns /album/<slug>/ or the placeholder.
func (b *Builder) Album(a *models.Album) string {
	if a == nil {
		return Placeholder
	}
	if a.Slug == "" {
		b.incomplete("album", a.ID, locator.ErrIncompleteAddress)
		return Placeholder
	}
	return "/album/" + url.PathEscape(a.Slug) + "/"
}

// Category returns /category/<slug>/ or the placeholder.
func (b *Builder) Category(c *models.Category) string {
	if c == nil {
		return Placeholder
	}
	return CategoryURL(c.Slug)
}

// CategoryURL builds a category address from a bare slug.
func CategoryURL(slug string) string {
	if slug == "" {
		return Placeholder
	}
	return "/category/" + url.PathEscape(slug) + "/"
}

// ArticleImage returns the URL of the article's preferred image.
func (b *Builder) ArticleImage(a *models.Article) string {
	if a == nil {
		return ""
	}
	key, _, ok := FirstPresent(
		Field("featured_image", a.FeaturedImageKey),
		Field("cover", a.CoverKey),
	)
	if !ok {
		return ""
	}
	return b.fileURL(key)
}

// AlbumImage returns the URL of the album cover, or of its first loaded
// image when no cover is set.
func (b *Builder) AlbumImage(a *models.Album) string {
	if a == nil {
		return ""
	}
	key, _, ok := FirstPresent(
		Field("cover_image", a.CoverImageKey),
		Accessor{Name: "first_image", Get: func() (string, bool) {
			if len(a.Images) == 0 || a.Images[0].ImageKey == "" {
				return "", false
			}
			return a.Images[0].ImageKey, true
		}},
	)
	if !ok {
		return ""
	}
	return b.fileURL(key)
}

// ImageURL maps a storage key to a URL, or "" when the key is empty.
func (b *Builder) ImageURL(key string) string {
	if key == "" {
		return ""
	}
	return b.fileURL(key)
}

func (b *Builder) fileURL(key string) string {
	if b.FileURL == nil {
		return ""
	}
	return b.FileURL(key)
}

func (b *Builder) incomplete(kind string, id int64, err error) {
	if !errors.Is(err, locator.ErrIncompleteAddress) {
		return
	}
	slog.Warn("content address incomplete", "kind", kind, "id", id)
	if b.Observer != nil {
		b.Observer.RecordIncompleteAddress(kind)
	}
}
