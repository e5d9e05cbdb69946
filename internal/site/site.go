// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package site assembles the shared context shown on every public page:
// settings, the main menu, the footer, the category list and the ads
// currently running in each slot.
package site

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"azincms/internal/links"
	"azincms/internal/models"
)

// Sources the context is read from. The store types satisfy these.
type (
	SettingsSource interface {
		Get() (models.SiteSettings, error)
	}
	MenuSource interface {
		FindEnabled(slug string) (*models.Menu, error)
	}
	FooterSource interface {
		VisibleLinks() ([]models.FooterLink, error)
		VisibleIcons() ([]models.FooterIcon, error)
	}
	CategorySource interface {
		List() ([]models.Category, error)
	}
	AdSource interface {
		ActiveByGroup(now time.Time) (map[models.AdGroup][]models.Ad, error)
		RecordImpressions(ids []int64, ip string) (capped []int64, err error)
	}
)

// Observer is told how many ad impressions were recorded.
type Observer interface {
	RecordAdImpressions(n int)
}

// AdView is an ad as shown on a page. Clicks go through ClickURL so they
// can be counted before redirecting to the advertiser.
type AdView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ImageURL     string `json:"image_url,omitempty"`
	ClickURL     string `json:"click_url,omitempty"`
	ExternalCode string `json:"external_code,omitempty"`
}

// FooterIconView is a footer icon with its image resolved to a URL.
type FooterIconView struct {
	models.FooterIcon
	ImageURL string `json:"image_url,omitempty"`
}

// CategoryView is a category with its public URL.
type CategoryView struct {
	models.Category
	URL string `json:"url"`
}

// Context is the shared page context.
type Context struct {
	Settings    models.SiteSettings         `json:"settings"`
	Menu        []models.MenuItem           `json:"menu"`
	FooterLinks []models.FooterLink         `json:"footer_links"`
	FooterIcons []FooterIconView            `json:"footer_icons"`
	Categories  []CategoryView              `json:"categories"`
	Ads         map[models.AdGroup][]AdView `json:"ads"`

	// AdsExpireAt is the earliest end date among the ads shown, or zero.
	// A page built from this context must not be cached past it.
	AdsExpireAt time.Time `json:"-"`
}

// AdIDs returns the ids of every ad in the context, slot by slot.
func (c *Context) AdIDs() []int64 {
	var ids []int64
	for _, g := range models.AdGroups {
		for _, a := range c.Ads[g] {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// Builder builds Contexts.
type Builder struct {
	Settings   SettingsSource
	Menus      MenuSource
	Footer     FooterSource
	Categories CategorySource
	Ads        AdSource
	Links      *links.Builder
	Observer   Observer

	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

// Build reads every part of the context. Settings fall back to defaults
// when unset; a missing or disabled main menu yields an empty menu.
func (b *Builder) Build() (*Context, error) {
	settings, err := b.Settings.Get()
	if err != nil {
		return nil, fmt.Errorf("site settings: %w", err)
	}

	ctx := &Context{
		Settings:    settings,
		Menu:        []models.MenuItem{},
		FooterLinks: []models.FooterLink{},
		FooterIcons: []FooterIconView{},
		Categories:  []CategoryView{},
		Ads:         map[models.AdGroup][]AdView{},
	}

	menu, err := b.Menus.FindEnabled(models.MainMenuSlug)
	if err != nil {
		return nil, fmt.Errorf("main menu: %w", err)
	}
	if menu != nil {
		ctx.Menu = resolveMenu(menu.Items)
	}

	if ctx.FooterLinks, err = b.Footer.VisibleLinks(); err != nil {
		return nil, fmt.Errorf("footer links: %w", err)
	}
	icons, err := b.Footer.VisibleIcons()
	if err != nil {
		return nil, fmt.Errorf("footer icons: %w", err)
	}
	for _, ic := range icons {
		ctx.FooterIcons = append(ctx.FooterIcons, FooterIconView{
			FooterIcon: ic,
			ImageURL:   b.Links.ImageURL(ic.ImageKey),
		})
	}

	cats, err := b.Categories.List()
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	for i := range cats {
		ctx.Categories = append(ctx.Categories, CategoryView{
			Category: cats[i],
			URL:      b.Links.Category(&cats[i]),
		})
	}

	groups, err := b.Ads.ActiveByGroup(b.now())
	if err != nil {
		return nil, fmt.Errorf("active ads: %w", err)
	}
	for _, g := range models.AdGroups {
		views := make([]AdView, 0, len(groups[g]))
		for _, a := range groups[g] {
			views = append(views, b.adView(a))
			if a.EndDate != nil && (ctx.AdsExpireAt.IsZero() || a.EndDate.Before(ctx.AdsExpireAt)) {
				ctx.AdsExpireAt = *a.EndDate
			}
		}
		ctx.Ads[g] = views
	}

	return ctx, nil
}

// RecordImpressions counts one view for each ad shown to ip and reports
// whether any of them just reached its impression cap. Failures are logged
// and swallowed; counting must never fail a page.
func (b *Builder) RecordImpressions(ids []int64, ip string) bool {
	if len(ids) == 0 {
		return false
	}
	capped, err := b.Ads.RecordImpressions(ids, ip)
	if err != nil {
		slog.Error("record ad impressions failed", "ads", len(ids), "error", err)
		return false
	}
	if b.Observer != nil {
		b.Observer.RecordAdImpressions(len(ids))
	}
	if len(capped) > 0 {
		slog.Info("ads reached their impression cap", "ads", capped)
		return true
	}
	return false
}

func (b *Builder) adView(a models.Ad) AdView {
	v := AdView{
		ID:           a.ID,
		Name:         a.Name,
		ImageURL:     b.Links.ImageURL(a.ImageKey),
		ExternalCode: a.ExternalCode,
	}
	if a.LinkURL != "" {
		v.ClickURL = ClickURL(a.ID)
	}
	return v
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// ClickURL returns the tracked click URL of an ad.
func ClickURL(id int64) string {
	return "/ads/" + strconv.FormatInt(id, 10) + "/click"
}

// resolveMenu fills in Href for every item in the tree.
func resolveMenu(items []models.MenuItem) []models.MenuItem {
	out := make([]models.MenuItem, len(items))
	for i, it := range items {
		it.Href = links.MenuItem(it.NamedURL, it.URLParams, it.URL)
		if len(it.Children) > 0 {
			it.Children = resolveMenu(it.Children)
		}
		out[i] = it
	}
	return out
}
