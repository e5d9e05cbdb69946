// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"azincms/internal/links"
	"azincms/internal/models"
	"azincms/internal/slug"
)

// Validation limits for admin request fields. Each matches the size of
// the column the field is stored in.
const (
	maxTitleLen     = 200
	maxSlugLen      = slug.MaxLength
	maxNameLen      = 200
	maxShortNameLen = 100
	maxURLLen       = 500
	maxParamsLen    = 300
	maxKeyLen       = 500
	maxSEODescLen   = 300
	maxCopyrightLen = 300
	maxCaptionLen   = 255
	maxBodyLen      = 100_000
	maxShortDescLen = 1_000
	maxSummaryLen   = 2_000
	maxExternalLen  = 20_000
)

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

// noSlash rejects values that would break out of a single path segment.
var noSlash = validation.NewStringRuleWithError(
	func(s string) bool { return !strings.ContainsAny(s, "/?#") },
	validation.NewError("validation_slug_chars", "must not contain /, ? or #"),
)

// ArticleRequest is the body of article create and update calls. Code and
// Slug are honoured on create only; they are fixed once assigned.
type ArticleRequest struct {
	Code             string            `json:"code"`
	Slug             string            `json:"slug"`
	Title            string            `json:"title"`
	Content          string            `json:"content"`
	BodyFormat       models.BodyFormat `json:"body_format"`
	ShortDescription string            `json:"short_description"`
	Summary          string            `json:"summary"`
	FeaturedImageKey string            `json:"featured_image_key"`
	CoverKey         string            `json:"cover_key"`
	CategoryIDs      []int64           `json:"category_ids"`
}

// Bind implements render.Binder.
func (a *ArticleRequest) Bind(*http.Request) error {
	a.Title = strings.TrimSpace(a.Title)
	a.Slug = strings.TrimSpace(a.Slug)
	return validation.ValidateStruct(a,
		validation.Field(&a.Code, validation.Match(codePattern).Error("must be six digits")),
		validation.Field(&a.Slug, validation.RuneLength(0, maxSlugLen), noSlash),
		validation.Field(&a.Title, validation.Required, validation.RuneLength(1, maxTitleLen)),
		validation.Field(&a.Content, validation.RuneLength(0, maxBodyLen)),
		validation.Field(&a.BodyFormat, validation.In(models.BodyFormatHTML, models.BodyFormatMarkdown)),
		validation.Field(&a.ShortDescription, validation.RuneLength(0, maxShortDescLen)),
		validation.Field(&a.Summary, validation.RuneLength(0, maxSummaryLen)),
		validation.Field(&a.FeaturedImageKey, validation.Length(0, maxKeyLen)),
		validation.Field(&a.CoverKey, validation.Length(0, maxKeyLen)),
		validation.Field(&a.CategoryIDs, validation.Each(validation.Min(int64(1)))),
	)
}

func (a *ArticleRequest) model() *models.Article {
	return &models.Article{
		Code:             a.Code,
		Slug:             a.Slug,
		Title:            a.Title,
		Content:          a.Content,
		BodyFormat:       a.BodyFormat,
		ShortDescription: a.ShortDescription,
		Summary:          a.Summary,
		FeaturedImageKey: a.FeaturedImageKey,
		CoverKey:         a.CoverKey,
		CategoryIDs:      a.CategoryIDs,
	}
}

// AlbumRequest is the body of album create and update calls.
type AlbumRequest struct {
	Code              string  `json:"code"`
	Slug              string  `json:"slug"`
	Title             string  `json:"title"`
	CoverImageKey     string  `json:"cover_image_key"`
	OrderInstructions string  `json:"order_instructions"`
	CategoryIDs       []int64 `json:"category_ids"`
}

// Bind implements render.Binder.
func (a *AlbumRequest) Bind(*http.Request) error {
	a.Title = strings.TrimSpace(a.Title)
	a.Slug = strings.TrimSpace(a.Slug)
	return validation.ValidateStruct(a,
		validation.Field(&a.Code, validation.Match(codePattern).Error("must be six digits")),
		validation.Field(&a.Slug, validation.RuneLength(0, maxSlugLen), noSlash),
		validation.Field(&a.Title, validation.Required, validation.RuneLength(1, maxTitleLen)),
		validation.Field(&a.CoverImageKey, validation.Length(0, maxKeyLen)),
		validation.Field(&a.OrderInstructions, validation.RuneLength(0, maxBodyLen)),
		validation.Field(&a.CategoryIDs, validation.Each(validation.Min(int64(1)))),
	)
}

func (a *AlbumRequest) model() *models.Album {
	return &models.Album{
		Code:              a.Code,
		Slug:              a.Slug,
		Title:             a.Title,
		CoverImageKey:     a.CoverImageKey,
		OrderInstructions: a.OrderInstructions,
		CategoryIDs:       a.CategoryIDs,
	}
}

// CategoryRequest is the body of category create and update calls.
type CategoryRequest struct {
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Description    string `json:"description"`
	SEOTitle       string `json:"seo_title"`
	SEODescription string `json:"seo_description"`
}

// Bind implements render.Binder.
func (c *CategoryRequest) Bind(*http.Request) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Slug = strings.TrimSpace(c.Slug)
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required, validation.RuneLength(1, maxNameLen)),
		validation.Field(&c.Slug, validation.RuneLength(0, maxSlugLen), noSlash),
		validation.Field(&c.Description, validation.RuneLength(0, maxBodyLen)),
		validation.Field(&c.SEOTitle, validation.RuneLength(0, maxTitleLen)),
		validation.Field(&c.SEODescription, validation.RuneLength(0, maxSEODescLen)),
	)
}

func (c *CategoryRequest) model() *models.Category {
	return &models.Category{
		Name:           c.Name,
		Slug:           c.Slug,
		Description:    c.Description,
		SEOTitle:       c.SEOTitle,
		SEODescription: c.SEODescription,
	}
}

// FooterLinkRequest is the body of footer link creation.
type FooterLinkRequest struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	SortOrder int    `json:"sort_order"`
	Show      *bool  `json:"show"`
}

// Bind implements render.Binder.
func (f *FooterLinkRequest) Bind(*http.Request) error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Title, validation.Required, validation.RuneLength(1, maxNameLen)),
		validation.Field(&f.URL, validation.Required, validation.Length(1, maxURLLen)),
		validation.Field(&f.SortOrder, validation.Min(0)),
	)
}

func (f *FooterLinkRequest) model() *models.FooterLink {
	return &models.FooterLink{Title: f.Title, URL: f.URL, SortOrder: f.SortOrder, Show: boolOr(f.Show, true)}
}

// FooterIconRequest is the body of footer icon creation. An icon needs an
// image, a CSS class or raw HTML to show anything.
type FooterIconRequest struct {
	Title     string `json:"title"`
	ImageKey  string `json:"image_key"`
	URL       string `json:"url"`
	IconClass string `json:"icon_class"`
	HTML      string `json:"html"`
	SortOrder int    `json:"sort_order"`
	Show      *bool  `json:"show"`
}

// Bind implements render.Binder.
func (f *FooterIconRequest) Bind(*http.Request) error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Title, validation.RuneLength(0, maxShortNameLen)),
		validation.Field(&f.ImageKey, validation.Length(0, maxKeyLen),
			validation.When(f.IconClass == "" && f.HTML == "", validation.Required.Error("image_key, icon_class or html is required"))),
		validation.Field(&f.URL, validation.Length(0, maxURLLen)),
		validation.Field(&f.IconClass, validation.RuneLength(0, maxShortNameLen)),
		validation.Field(&f.HTML, validation.Length(0, maxExternalLen)),
		validation.Field(&f.SortOrder, validation.Min(0)),
	)
}

func (f *FooterIconRequest) model() *models.FooterIcon {
	return &models.FooterIcon{
		Title:     f.Title,
		ImageKey:  f.ImageKey,
		URL:       f.URL,
		IconClass: f.IconClass,
		HTML:      f.HTML,
		SortOrder: f.SortOrder,
		Show:      boolOr(f.Show, true),
	}
}

// AdRequest is the body of ad create and update calls.
type AdRequest struct {
	Name           string         `json:"name"`
	Group          models.AdGroup `json:"group"`
	ImageKey       string         `json:"image_key"`
	LinkURL        string         `json:"link_url"`
	ExternalCode   string         `json:"external_code"`
	IsActive       *bool          `json:"is_active"`
	StartDate      *time.Time     `json:"start_date"`
	EndDate        *time.Time     `json:"end_date"`
	MaxImpressions *int           `json:"max_impressions"`
}

// Bind implements render.Binder.
func (a *AdRequest) Bind(*http.Request) error {
	a.Name = strings.TrimSpace(a.Name)
	return validation.ValidateStruct(a,
		validation.Field(&a.Name, validation.Required, validation.RuneLength(1, maxNameLen)),
		validation.Field(&a.Group, validation.Required, validation.By(func(v any) error {
			if g, _ := v.(models.AdGroup); !g.Valid() {
				return errors.New("must be header, main or sidebar")
			}
			return nil
		})),
		validation.Field(&a.ImageKey, validation.Length(0, maxKeyLen)),
		validation.Field(&a.LinkURL, validation.Length(0, maxURLLen), is.URL),
		validation.Field(&a.ExternalCode, validation.Length(0, maxExternalLen)),
		validation.Field(&a.EndDate, validation.By(func(any) error {
			if a.StartDate != nil && a.EndDate != nil && a.EndDate.Before(*a.StartDate) {
				return errors.New("must not be before start_date")
			}
			return nil
		})),
		validation.Field(&a.MaxImpressions, validation.Min(0)),
	)
}

func (a *AdRequest) model() *models.Ad {
	return &models.Ad{
		Name:           a.Name,
		Group:          a.Group,
		ImageKey:       a.ImageKey,
		LinkURL:        a.LinkURL,
		ExternalCode:   a.ExternalCode,
		IsActive:       boolOr(a.IsActive, true),
		StartDate:      a.StartDate,
		EndDate:        a.EndDate,
		MaxImpressions: a.MaxImpressions,
	}
}

// SettingsRequest is the body of the settings update. Empty fields fall
// back to the defaults.
type SettingsRequest struct {
	SiteName      string `json:"site_name"`
	AboutText     string `json:"about_text"`
	CopyrightText string `json:"copyright_text"`
}

// Bind implements render.Binder.
func (s *SettingsRequest) Bind(*http.Request) error {
	return validation.ValidateStruct(s,
		validation.Field(&s.SiteName, validation.RuneLength(0, maxNameLen)),
		validation.Field(&s.AboutText, validation.RuneLength(0, maxBodyLen)),
		validation.Field(&s.CopyrightText, validation.RuneLength(0, maxCopyrightLen)),
	)
}

// MenuRequest is the body of menu creation.
type MenuRequest struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Enabled *bool  `json:"enabled"`
}

// Bind implements render.Binder.
func (m *MenuRequest) Bind(*http.Request) error {
	return validation.ValidateStruct(m,
		validation.Field(&m.Name, validation.Required, validation.RuneLength(1, maxNameLen)),
		validation.Field(&m.Slug, validation.Required, validation.RuneLength(1, maxSlugLen), noSlash),
	)
}

// MenuItemRequest is the body of menu item creation. A named route must
// reverse with the given params, so broken links are caught on save.
type MenuItemRequest struct {
	ParentID  *int64 `json:"parent_id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	NamedURL  string `json:"named_url"`
	URLParams string `json:"url_params"`
	SortOrder int    `json:"sort_order"`
	Show      *bool  `json:"show"`
	Icon      string `json:"icon"`
}

// Bind implements render.Binder.
func (m *MenuItemRequest) Bind(*http.Request) error {
	return validation.ValidateStruct(m,
		validation.Field(&m.Title, validation.Required, validation.RuneLength(1, maxTitleLen)),
		validation.Field(&m.URL, validation.Length(0, maxURLLen)),
		validation.Field(&m.NamedURL, validation.Length(0, maxNameLen), validation.By(func(any) error {
			if m.NamedURL == "" {
				return nil
			}
			args, kwargs := links.ParseParams(m.URLParams)
			if _, err := links.Reverse(m.NamedURL, args, kwargs); err != nil {
				return errors.New("does not resolve with the given url_params")
			}
			return nil
		})),
		validation.Field(&m.URLParams, validation.RuneLength(0, maxParamsLen)),
		validation.Field(&m.SortOrder, validation.Min(0)),
		validation.Field(&m.Icon, validation.RuneLength(0, maxShortNameLen)),
	)
}

func (m *MenuItemRequest) model(menuID int64) *models.MenuItem {
	return &models.MenuItem{
		MenuID:    menuID,
		ParentID:  m.ParentID,
		Title:     m.Title,
		URL:       m.URL,
		NamedURL:  m.NamedURL,
		URLParams: m.URLParams,
		SortOrder: m.SortOrder,
		Show:      boolOr(m.Show, true),
		Icon:      m.Icon,
	}
}

// AlbumImageForm holds the non-file fields of an image upload.
type AlbumImageForm struct {
	Caption   string
	SortOrder int
}

// Validate implements validation.Validatable.
func (f AlbumImageForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Caption, validation.RuneLength(0, maxCaptionLen)),
		validation.Field(&f.SortOrder, validation.Min(0)),
	)
}

func boolOr(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}
