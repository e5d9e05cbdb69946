// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"azincms/internal/cache"
	"azincms/internal/models"
	"azincms/internal/storage"
	"azincms/internal/store"
)

const (
	// maxJSONBody caps admin request bodies.
	maxJSONBody = 1 << 20

	adminListLimit   = 100
	cacheLogLimit    = 50
	adEventsDefault  = 100
	adEventsMaxLimit = 1000
)

// AdminDeps holds the dependencies of the admin API. PageCache and Storage
// may be nil.
type AdminDeps struct {
	Articles   *store.ArticleStore
	Albums     *store.AlbumStore
	Categories *store.CategoryStore
	Ads        *store.AdStore
	Footer     *store.FooterStore
	Menus      *store.MenuStore
	Settings   *store.SiteSettingStore
	CacheLog   *store.CacheLogStore
	PageCache  *cache.PageCache
	Storage    *storage.Client
}

// Admin groups the admin API handlers. Every successful write clears the
// whole page cache, since menus, ads and category lists appear on every
// page, and leaves a row in the invalidation log.
type Admin struct {
	articles   *store.ArticleStore
	albums     *store.AlbumStore
	categories *store.CategoryStore
	ads        *store.AdStore
	footer     *store.FooterStore
	menus      *store.MenuStore
	settings   *store.SiteSettingStore
	cacheLog   *store.CacheLogStore
	pageCache  *cache.PageCache
	storage    *storage.Client
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(d AdminDeps) *Admin {
	return &Admin{
		articles:   d.Articles,
		albums:     d.Albums,
		categories: d.Categories,
		ads:        d.Ads,
		footer:     d.Footer,
		menus:      d.Menus,
		settings:   d.Settings,
		cacheLog:   d.CacheLog,
		pageCache:  d.PageCache,
		storage:    d.Storage,
	}
}

// bind decodes a JSON body into v and validates it. It writes the error
// response and returns false on failure.
func bind(w http.ResponseWriter, r *http.Request, v render.Binder) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := render.DecodeJSON(r.Body, v); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := v.Bind(r); err != nil {
		respondValidation(w, r, err)
		return false
	}
	return true
}

// storeFailed maps a store error to a response.
func storeFailed(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, store.ErrDuplicate) {
		respondError(w, r, http.StatusConflict, "code, slug or name already in use")
		return
	}
	slog.Error(op+" failed", "error", err)
	respondError(w, r, http.StatusInternalServerError, "internal error")
}

// invalidate clears the page cache after a write and logs why.
func (a *Admin) invalidate(ctx context.Context, entityType string, id int64, action string) {
	if a.pageCache != nil {
		a.pageCache.InvalidateAll(ctx)
	}
	a.cacheLog.Log(entityType, id, action)
}

func created(w http.ResponseWriter, r *http.Request, v any) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, v)
}

// --- Articles ---

// ListArticles returns the newest articles.
func (a *Admin) ListArticles(w http.ResponseWriter, r *http.Request) {
	items, err := a.articles.ListRecent(adminListLimit)
	if err != nil {
		storeFailed(w, r, "list articles", err)
		return
	}
	render.JSON(w, r, items)
}

// GetArticle returns one article by ID.
func (a *Admin) GetArticle(w http.ResponseWriter, r *http.Request) {
	item, ok := a.findArticle(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, item)
}

func (a *Admin) findArticle(w http.ResponseWriter, r *http.Request) (*models.Article, bool) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusNotFound, "not found")
		return nil, false
	}
	item, err := a.articles.FindByID(id)
	if err != nil {
		storeFailed(w, r, "find article", err)
		return nil, false
	}
	if item == nil {
		respondError(w, r, http.StatusNotFound, "not found")
		return nil, false
	}
	return item, true
}

// CreateArticle inserts an article. A missing code or slug is generated.
func (a *Admin) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req ArticleRequest
	if !bind(w, r, &req) {
		return
	}
	item, err := a.articles.Create(req.model())
	if err != nil {
		storeFailed(w, r, "create article", err)
		return
	}
	a.invalidate(r.Context(), "article", item.ID, "create")
	slog.Info("article created", "id", item.ID, "code", item.Code, "slug", item.Slug)
	created(w, r, item)
}

// UpdateArticle rewrites an article's editable fields. The address it was
// published under is kept, so code and slug in the body are ignored.
func (a *Admin) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	existing, ok := a.findArticle(w, r)
	if !ok {
		return
	}
	var req ArticleRequest
	if !bind(w, r, &req) {
		return
	}
	item := req.model()
	item.ID = existing.ID
	if err := a.articles.Update(item); err != nil {
		storeFailed(w, r, "update article", err)
		return
	}
	a.invalidate(r.Context(), "article", item.ID, "update")

	updated, err := a.articles.FindByID(item.ID)
	if err != nil || updated == nil {
		storeFailed(w, r, "reload article", err)
		return
	}
	render.JSON(w, r, updated)
}

// DeleteArticle removes an article.
func (a *Admin) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	if err := a.articles.Delete(id); err != nil {
		storeFailed(w, r, "delete article", err)
		return
	}
	a.invalidate(r.Context(), "article", id, "delete")
	w.WriteHeader(http.StatusNoContent)
}

// --- Albums ---

// ListAlbums returns the newest albums.
func (a *Admin) ListAlbums(w http.ResponseWriter, r *http.Request) {
	items, err := a.albums.ListRecent(adminListLimit)
	if err != nil {
		storeFailed(w, r, "list albums", err)
		return
	}
	render.JSON(w, r, items)
}

// GetAlbum returns one album with its images.
func (a *Admin) GetAlbum(w http.ResponseWriter, r *http.Request) {
	item, ok := a.findAlbum(w, r)
	if !ok {
		return
	}
	imgs, err := a.albums.Images(item.ID, detailImagesLimit)
	if err != nil {
		storeFailed(w, r, "list album images", err)
		return
	}
	item.Images = imgs
	render.JSON(w, r, item)
}

func (a *Admin) findAlbum(w http.ResponseWriter, r *http.Request) (*models.Album, bool) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusNotFound, "not found")
		return nil, false
	}
	item, err := a.albums.FindByID(id)
	if err != nil {
		storeFailed(w, r, "find album", err)
		return nil, false
	}
	if item == nil {
		respondError(w, r, http.StatusNotFound, "not found")
		return nil, false
	}
	return item, true
}

// CreateAlbum inserts an album.
func (a *Admin) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	var req AlbumRequest
	if !bind(w, r, &req) {
		return
	}
	item, err := a.albums.Create(req.model())
	if err != nil {
		storeFailed(w, r, "create album", err)
		return
	}
	a.invalidate(r.Context(), "album", item.ID, "create")
	slog.Info("album created", "id", item.ID, "code", item.Code, "slug", item.Slug)
	created(w, r, item)
}

// UpdateAlbum rewrites an album's editable fields. Code and slug are kept.
func (a *Admin) UpdateAlbum(w http.ResponseWriter, r *http.Request) {
	existing, ok := a.findAlbum(w, r)
	if !ok {
		return
	}
	var req AlbumRequest
	if !bind(w, r, &req) {
		return
	}
	item := req.model()
	item.ID = existing.ID
	if err := a.albums.Update(item); err != nil {
		storeFailed(w, r, "update album", err)
		return
	}
	a.invalidate(r.Context(), "album", item.ID, "update")

	updated, err := a.albums.FindByID(item.ID)
	if err != nil || updated == nil {
		storeFailed(w, r, "reload album", err)
		return
	}
	render.JSON(w, r, updated)
}

// DeleteAlbum removes an album and its image rows. Stored objects are
// removed on a best-effort basis.
func (a *Admin) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	imgs, err := a.albums.Images(id, detailImagesLimit)
	if err != nil {
		storeFailed(w, r, "list album images", err)
		return
	}
	if err := a.albums.Delete(id); err != nil {
		storeFailed(w, r, "delete album", err)
		return
	}
	for _, img := range imgs {
		a.deleteObject(r.Context(), img.ImageKey)
	}
	a.invalidate(r.Context(), "album", id, "delete")
	w.WriteHeader(http.StatusNoContent)
}

// --- Categories ---

// ListCategories returns every category with its content counts.
func (a *Admin) ListCategories(w http.ResponseWriter, r *http.Request) {
	items, err := a.categories.List()
	if err != nil {
		storeFailed(w, r, "list categories", err)
		return
	}
	render.JSON(w, r, items)
}

// GetCategory returns one category.
func (a *Admin) GetCategory(w http.ResponseWriter, r *http.Request) {
	item, ok := a.findCategory(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, item)
}

func (a *Admin) findCategory(w http.ResponseWriter, r *http.Request) (*models.Category, bool) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusNotFound, "not found")
		return nil, false
	}
	item, err := a.categories.FindByID(id)
	if err != nil {
		storeFailed(w, r, "find category", err)
		return nil, false
	}
	if item == nil {
		respondError(w, r, http.StatusNotFound, "not found")
		return nil, false
	}
	return item, true
}

// CreateCategory inserts a category. A missing slug is derived from the name.
func (a *Admin) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !bind(w, r, &req) {
		return
	}
	item, err := a.categories.Create(req.model())
	if err != nil {
		storeFailed(w, r, "create category", err)
		return
	}
	a.invalidate(r.Context(), "category", item.ID, "create")
	created(w, r, item)
}

// UpdateCategory rewrites a category. Its slug is kept.
func (a *Admin) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	existing, ok := a.findCategory(w, r)
	if !ok {
		return
	}
	var req CategoryRequest
	if !bind(w, r, &req) {
		return
	}
	item := req.model()
	item.ID = existing.ID
	item.Slug = existing.Slug
	if err := a.categories.Update(item); err != nil {
		storeFailed(w, r, "update category", err)
		return
	}
	a.invalidate(r.Context(), "category", item.ID, "update")
	item.CreatedAt = existing.CreatedAt
	render.JSON(w, r, item)
}

// DeleteCategory removes a category.
func (a *Admin) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	if err := a.categories.Delete(id); err != nil {
		storeFailed(w, r, "delete category", err)
		return
	}
	a.invalidate(r.Context(), "category", id, "delete")
	w.WriteHeader(http.StatusNoContent)
}

// --- Footer ---

// FooterView is the admin view of the visible footer.
type FooterView struct {
	Links []models.FooterLink `json:"links"`
	Icons []models.FooterIcon `json:"icons"`
}

// GetFooter returns the visible footer links and icons.
func (a *Admin) GetFooter(w http.ResponseWriter, r *http.Request) {
	links, err := a.footer.VisibleLinks()
	if err != nil {
		storeFailed(w, r, "list footer links", err)
		return
	}
	icons, err := a.footer.VisibleIcons()
	if err != nil {
		storeFailed(w, r, "list footer icons", err)
		return
	}
	render.JSON(w, r, FooterView{Links: links, Icons: icons})
}

// CreateFooterLink adds a footer link.
func (a *Admin) CreateFooterLink(w http.ResponseWriter, r *http.Request) {
	var req FooterLinkRequest
	if !bind(w, r, &req) {
		return
	}
	item, err := a.footer.CreateLink(req.model())
	if err != nil {
		storeFailed(w, r, "create footer link", err)
		return
	}
	a.invalidate(r.Context(), "footer_link", item.ID, "create")
	created(w, r, item)
}

// DeleteFooterLink removes a footer link.
func (a *Admin) DeleteFooterLink(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	if err := a.footer.DeleteLink(id); err != nil {
		storeFailed(w, r, "delete footer link", err)
		return
	}
	a.invalidate(r.Context(), "footer_link", id, "delete")
	w.WriteHeader(http.StatusNoContent)
}

// CreateFooterIcon adds a footer icon.
func (a *Admin) CreateFooterIcon(w http.ResponseWriter, r *http.Request) {
	var req FooterIconRequest
	if !bind(w, r, &req) {
		return
	}
	item, err := a.footer.CreateIcon(req.model())
	if err != nil {
		storeFailed(w, r, "create footer icon", err)
		return
	}
	a.invalidate(r.Context(), "footer_icon", item.ID, "create")
	created(w, r, item)
}

// DeleteFooterIcon removes a footer icon.
func (a *Admin) DeleteFooterIcon(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	if err := a.footer.DeleteIcon(id); err != nil {
		storeFailed(w, r, "delete footer icon", err)
		return
	}
	a.invalidate(r.Context(), "footer_icon", id, "delete")
	w.WriteHeader(http.StatusNoContent)
}

// --- Ads ---

// ListAds returns every ad with its counters.
func (a *Admin) ListAds(w http.ResponseWriter, r *http.Request) {
	items, err := a.ads.List()
	if err != nil {
		storeFailed(w, r, "list ads", err)
		return
	}
	render.JSON(w, r, items)
}

func (a *Admin) findAd(w http.ResponseWriter, r *http.Request) (*models.Ad, bool) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusNotFound, "not found")
		return nil, false
	}
	item, err := a.ads.FindByID(id)
	if err != nil {
		storeFailed(w, r, "find ad", err)
		return nil, false
	}
	if item == nil {
		respondError(w, r, http.StatusNotFound, "not found")
		return nil, false
	}
	return item, true
}

// GetAd returns one ad.
func (a *Admin) GetAd(w http.ResponseWriter, r *http.Request) {
	item, ok := a.findAd(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, item)
}

// CreateAd inserts an ad.
func (a *Admin) CreateAd(w http.ResponseWriter, r *http.Request) {
	var req AdRequest
	if !bind(w, r, &req) {
		return
	}
	item, err := a.ads.Create(req.model())
	if err != nil {
		storeFailed(w, r, "create ad", err)
		return
	}
	a.invalidate(r.Context(), "ad", item.ID, "create")
	created(w, r, item)
}

// UpdateAd rewrites an ad. Impression and click counters are kept.
func (a *Admin) UpdateAd(w http.ResponseWriter, r *http.Request) {
	existing, ok := a.findAd(w, r)
	if !ok {
		return
	}
	var req AdRequest
	if !bind(w, r, &req) {
		return
	}
	item := req.model()
	item.ID = existing.ID
	if err := a.ads.Update(item); err != nil {
		storeFailed(w, r, "update ad", err)
		return
	}
	a.invalidate(r.Context(), "ad", item.ID, "update")

	updated, err := a.ads.FindByID(item.ID)
	if err != nil || updated == nil {
		storeFailed(w, r, "reload ad", err)
		return
	}
	render.JSON(w, r, updated)
}

// DeleteAd removes an ad and its events.
func (a *Admin) DeleteAd(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	if err := a.ads.Delete(id); err != nil {
		storeFailed(w, r, "delete ad", err)
		return
	}
	a.invalidate(r.Context(), "ad", id, "delete")
	w.WriteHeader(http.StatusNoContent)
}

// AdEvents returns the newest view and click events of an ad. The limit
// query parameter defaults to 100 and is capped at 1000.
func (a *Admin) AdEvents(w http.ResponseWriter, r *http.Request) {
	item, ok := a.findAd(w, r)
	if !ok {
		return
	}
	limit := adEventsDefault
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, adEventsMaxLimit)
	}
	events, err := a.ads.Events(item.ID, limit)
	if err != nil {
		storeFailed(w, r, "list ad events", err)
		return
	}
	render.JSON(w, r, events)
}

// --- Settings ---

// GetSettings returns the site settings with defaults applied.
func (a *Admin) GetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := a.settings.Get()
	if err != nil {
		storeFailed(w, r, "get settings", err)
		return
	}
	render.JSON(w, r, st)
}

// UpdateSettings saves the site settings.
func (a *Admin) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if !bind(w, r, &req) {
		return
	}
	st := models.SiteSettings{
		SiteName:      req.SiteName,
		AboutText:     req.AboutText,
		CopyrightText: req.CopyrightText,
	}
	if err := a.settings.Save(st); err != nil {
		storeFailed(w, r, "save settings", err)
		return
	}
	a.invalidate(r.Context(), "settings", 0, "update")

	saved, err := a.settings.Get()
	if err != nil {
		storeFailed(w, r, "get settings", err)
		return
	}
	render.JSON(w, r, saved)
}

// --- Menus ---

// GetMenu returns an enabled menu by slug with its full item tree.
func (a *Admin) GetMenu(w http.ResponseWriter, r *http.Request) {
	m, err := a.menus.FindEnabled(chi.URLParam(r, "slug"))
	if err != nil {
		storeFailed(w, r, "find menu", err)
		return
	}
	if m == nil {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	render.JSON(w, r, m)
}

// CreateMenu inserts a menu.
func (a *Admin) CreateMenu(w http.ResponseWriter, r *http.Request) {
	var req MenuRequest
	if !bind(w, r, &req) {
		return
	}
	m, err := a.menus.Create(&models.Menu{Name: req.Name, Slug: req.Slug, Enabled: boolOr(req.Enabled, true)})
	if err != nil {
		storeFailed(w, r, "create menu", err)
		return
	}
	a.invalidate(r.Context(), "menu", m.ID, "create")
	created(w, r, m)
}

// AddMenuItem appends an item to a menu.
func (a *Admin) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	menuID, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	var req MenuItemRequest
	if !bind(w, r, &req) {
		return
	}
	item, err := a.menus.AddItem(req.model(menuID))
	if err != nil {
		storeFailed(w, r, "add menu item", err)
		return
	}
	a.invalidate(r.Context(), "menu_item", item.ID, "create")
	created(w, r, item)
}

// DeleteMenuItem removes a menu item and its children.
func (a *Admin) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	if err := a.menus.DeleteItem(id); err != nil {
		storeFailed(w, r, "delete menu item", err)
		return
	}
	a.invalidate(r.Context(), "menu_item", id, "delete")
	w.WriteHeader(http.StatusNoContent)
}

// --- Cache ---

// CacheLog returns the most recent page cache invalidations.
func (a *Admin) CacheLog(w http.ResponseWriter, r *http.Request) {
	entries, err := a.cacheLog.RecentEntries(cacheLogLimit)
	if err != nil {
		storeFailed(w, r, "list cache log", err)
		return
	}
	render.JSON(w, r, entries)
}

// PurgeCache clears every cached page.
func (a *Admin) PurgeCache(w http.ResponseWriter, r *http.Request) {
	a.invalidate(r.Context(), "cache", 0, "purge")
	slog.Info("page cache purged by admin")
	w.WriteHeader(http.StatusNoContent)
}
