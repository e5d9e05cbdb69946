// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package feed merges articles and albums into one reverse-chronological
// list for sidebars, listings and the RSS feed.
package feed

import (
	"slices"
	"time"

	"azincms/internal/links"
	"azincms/internal/models"
)

// Kind names the content type an entry was projected from.
type Kind string

const (
	KindPost  Kind = "post"
	KindAlbum Kind = "album"
)

// Entry is a display-only projection. It is built per request and never
// persisted.
type Entry struct {
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url"`
}

// Assembler projects content into entries. It keeps no state between calls.
type Assembler struct {
	Links *links.Builder
}

// New creates an Assembler that builds URLs with lb.
func New(lb *links.Builder) *Assembler {
	return &Assembler{Links: lb}
}

// Assemble returns articles and albums as one list, newest first. Items
// without a creation time sort last. Equal times keep articles ahead of
// albums and otherwise preserve input order.
func (a *Assembler) Assemble(articles []models.Article, albums []models.Album) []Entry {
	lb := a.Links
	if lb == nil {
		lb = &links.Builder{}
	}

	entries := make([]Entry, 0, len(articles)+len(albums))
	for i := range articles {
		entries = append(entries, Entry{
			Kind:      KindPost,
			Title:     articles[i].Title,
			CreatedAt: articles[i].CreatedAt,
			URL:       lb.Article(&articles[i]),
		})
	}
	for i := range albums {
		entries = append(entries, Entry{
			Kind:      KindAlbum,
			Title:     albums[i].Title,
			CreatedAt: albums[i].CreatedAt,
			URL:       lb.Album(&albums[i]),
		})
	}

	Sort(entries)
	return entries
}

// Sort orders entries newest first with a stable sort. The zero time is
// the oldest possible value.
func Sort(entries []Entry) {
	slices.SortStableFunc(entries, func(x, y Entry) int {
		return y.CreatedAt.Compare(x.CreatedAt)
	})
}
