// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"time"

	"azincms/internal/feed"
	"azincms/internal/links"
	"azincms/internal/markdown"
	"azincms/internal/models"
	"azincms/internal/site"
	"azincms/internal/summary"
)

// View limits, matching the layout of the public pages.
const (
	homeOtherPosts    = 7
	homeTabAlbums     = 12
	categoryListLimit = 20
	feedKindLimit     = 20
	searchKindLimit   = 200
	searchFeedLimit   = 20
	albumImagesLimit  = 50
	detailImagesLimit = 500
	rssKindLimit      = 30
)

// CategoryRef is a category as linked from content.
type CategoryRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

// ArticleCard is an article in a list.
type ArticleCard struct {
	ID         int64         `json:"id"`
	Code       string        `json:"code"`
	Title      string        `json:"title"`
	URL        string        `json:"url"`
	ImageURL   string        `json:"image_url,omitempty"`
	Summary    string        `json:"summary"`
	CreatedAt  time.Time     `json:"created_at"`
	Categories []CategoryRef `json:"categories"`
}

// ArticleDetail is a full article page.
type ArticleDetail struct {
	ArticleCard
	ShortDescription string    `json:"short_description"`
	BodyHTML         string    `json:"body_html"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AlbumCard is an album in a list.
type AlbumCard struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CoverURL  string    `json:"cover_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ImageView is an album image with its public URL.
type ImageView struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// AlbumDetail is a full album page.
type AlbumDetail struct {
	AlbumCard
	OrderInstructions string        `json:"order_instructions"`
	Categories        []CategoryRef `json:"categories"`
	Images            []ImageView   `json:"images"`
}

// AlbumTab groups the albums of one category.
type AlbumTab struct {
	Name   string      `json:"name"`
	Slug   string      `json:"slug"`
	URL    string      `json:"url"`
	Albums []AlbumCard `json:"albums"`
}

// HomeView is the body of GET /.
type HomeView struct {
	Site      *site.Context `json:"site"`
	Featured  *ArticleCard  `json:"featured_post"`
	Posts     []ArticleCard `json:"posts"`
	AlbumTabs []AlbumTab    `json:"album_tabs"`
	Feed      []feed.Entry  `json:"combined_items"`
}

// CategoryView is the body of GET /category/{slug}/.
type CategoryView struct {
	Site      *site.Context   `json:"site"`
	Category  models.Category `json:"category"`
	Featured  *ArticleCard    `json:"featured_post"`
	Posts     []ArticleCard   `json:"posts"`
	Albums    []AlbumCard     `json:"albums"`
	AlbumTabs []AlbumTab      `json:"album_tabs"`
	Feed      []feed.Entry    `json:"combined_items"`
}

// PostView is the body of the post detail routes.
type PostView struct {
	Site *site.Context `json:"site"`
	Post ArticleDetail `json:"post"`
	Feed []feed.Entry  `json:"combined_items"`
}

// AlbumView is the body of GET /album/{slug}/.
type AlbumView struct {
	Site  *site.Context `json:"site"`
	Album AlbumDetail   `json:"album"`
}

// AlbumImagesView is the body of GET /ajax/album-images/{id}/.
type AlbumImagesView struct {
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	CategorySlug string      `json:"category_slug"`
	Images       []ImageView `json:"images"`
}

// SearchView is the body of GET /search/.
type SearchView struct {
	Site   *site.Context `json:"site"`
	Query  string        `json:"q"`
	Scope  string        `json:"scope"`
	Posts  []ArticleCard `json:"posts"`
	Albums []AlbumCard   `json:"albums"`
	Feed   []feed.Entry  `json:"combined_items"`
}

// views turns models into view models.
type views struct {
	links *links.Builder
}

// bodyHTML renders an article body. A Markdown failure falls back to the
// stored text so the page still renders.
func bodyHTML(a *models.Article) string {
	out, err := markdown.Body(a.BodyFormat, a.Content)
	if err != nil {
		slog.Warn("article body render failed", "id", a.ID, "error", err)
		return a.Content
	}
	return out
}

func (v views) categoryRefs(cats []models.Category) []CategoryRef {
	refs := make([]CategoryRef, 0, len(cats))
	for i := range cats {
		refs = append(refs, CategoryRef{
			Name: cats[i].Name,
			Slug: cats[i].Slug,
			URL:  v.links.Category(&cats[i]),
		})
	}
	return refs
}

func (v views) articleCard(a *models.Article) ArticleCard {
	return ArticleCard{
		ID:       a.ID,
		Code:     a.Code,
		Title:    a.Title,
		URL:      v.links.Article(a),
		ImageURL: v.links.ArticleImage(a),
		Summary: summary.Extract(summary.Source{
			Summary:          a.Summary,
			ShortDescription: a.ShortDescription,
			Content:          bodyHTML(a),
		}, summary.DefaultLength, true),
		CreatedAt:  a.CreatedAt,
		Categories: v.categoryRefs(a.Categories),
	}
}

func (v views) articleCards(items []models.Article) []ArticleCard {
	cards := make([]ArticleCard, 0, len(items))
	for i := range items {
		cards = append(cards, v.articleCard(&items[i]))
	}
	return cards
}

func (v views) articleDetail(a *models.Article) ArticleDetail {
	return ArticleDetail{
		ArticleCard:      v.articleCard(a),
		ShortDescription: a.ShortDescription,
		BodyHTML:         bodyHTML(a),
		UpdatedAt:        a.UpdatedAt,
	}
}

func (v views) albumCard(a *models.Album) AlbumCard {
	return AlbumCard{
		ID:        a.ID,
		Code:      a.Code,
		Title:     a.Title,
		URL:       v.links.Album(a),
		CoverURL:  v.links.AlbumImage(a),
		CreatedAt: a.CreatedAt,
	}
}

func (v views) albumCards(items []models.Album) []AlbumCard {
	cards := make([]AlbumCard, 0, len(items))
	for i := range items {
		cards = append(cards, v.albumCard(&items[i]))
	}
	return cards
}

// images returns the images that resolve to a URL; the rest are skipped.
func (v views) images(items []models.AlbumImage) []ImageView {
	out := make([]ImageView, 0, len(items))
	for _, im := range items {
		u := v.links.ImageURL(im.ImageKey)
		if u == "" {
			continue
		}
		out = append(out, ImageView{URL: u, Caption: im.Caption})
	}
	return out
}

func (v views) albumDetail(a *models.Album) AlbumDetail {
	return AlbumDetail{
		AlbumCard:         v.albumCard(a),
		OrderInstructions: a.OrderInstructions,
		Categories:        v.categoryRefs(a.Categories),
		Images:            v.images(a.Images),
	}
}

func (v views) albumTab(c *models.Category, albums []models.Album) AlbumTab {
	return AlbumTab{
		Name:   c.Name,
		Slug:   c.Slug,
		URL:    v.links.Category(c),
		Albums: v.albumCards(albums),
	}
}

// splitFeatured separates the newest article from the rest.
func splitFeatured(cards []ArticleCard) (*ArticleCard, []ArticleCard) {
	if len(cards) == 0 {
		return nil, []ArticleCard{}
	}
	featured := cards[0]
	return &featured, cards[1:]
}
