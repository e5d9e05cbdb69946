// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"azincms/internal/cache"
	"azincms/internal/feed"
	"azincms/internal/links"
	"azincms/internal/locator"
	"azincms/internal/middleware"
	"azincms/internal/models"
	"azincms/internal/site"
	"azincms/internal/store"
)

// errPageNotFound is returned by page builders when the addressed content
// does not exist.
var errPageNotFound = errors.New("page not found")

// AdClickObserver is told about each recorded ad click.
type AdClickObserver interface {
	RecordAdClick()
}

// PublicDeps holds what the public handlers read from. PageCache and
// Clicks may be nil.
type PublicDeps struct {
	Articles   *store.ArticleStore
	Albums     *store.AlbumStore
	Categories *store.CategoryStore
	Ads        *store.AdStore
	Site       *site.Builder
	Links      *links.Builder
	PageCache  *cache.PageCache
	Clicks     AdClickObserver
	Locator    locator.Observer
	Channel    feed.Channel
}

// Public groups the handlers of the public JSON site. Rendered bodies go
// through the Valkey page cache; lookups that redirect are never cached.
type Public struct {
	articles   *store.ArticleStore
	albums     *store.AlbumStore
	categories *store.CategoryStore
	ads        *store.AdStore
	site       *site.Builder
	views      views
	feed       *feed.Assembler
	posts      *locator.Locator[*models.Article]
	pageCache  *cache.PageCache
	clicks     AdClickObserver
	channel    feed.Channel
}

// NewPublic creates a new Public handler group.
func NewPublic(d PublicDeps) *Public {
	return &Public{
		articles:   d.Articles,
		albums:     d.Albums,
		categories: d.Categories,
		ads:        d.Ads,
		site:       d.Site,
		views:      views{links: d.Links},
		feed:       feed.New(d.Links),
		posts:      locator.New[*models.Article](d.Articles, d.Locator),
		pageCache:  d.PageCache,
		clicks:     d.Clicks,
		channel:    d.Channel,
	}
}

// page is a rendered response body plus the ads it shows. expires is when
// the first of those ads stops running, or zero.
type page struct {
	contentType string
	body        []byte
	adIDs       []int64
	expires     time.Time
}

// jsonPage encodes v. sc is the site context embedded in v, if any.
func jsonPage(v any, sc *site.Context) (*page, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}
	pg := &page{contentType: "application/json; charset=utf-8", body: body}
	if sc != nil {
		pg.adIDs = sc.AdIDs()
		pg.expires = sc.AdsExpireAt
	}
	return pg, nil
}

// serve answers from the page cache when possible, otherwise builds the
// page and caches it until the TTL or the first of its ads ends. Ad
// impressions are recorded either way.
func (p *Public) serve(w http.ResponseWriter, r *http.Request, build func() (*page, error)) {
	ctx := r.Context()
	key := cache.RequestKey(r.URL)

	if p.pageCache != nil {
		if e, ok := p.pageCache.Get(ctx, key); ok {
			p.write(w, r, &page{contentType: e.ContentType, body: e.Body, adIDs: e.AdIDs})
			return
		}
	}

	pg, err := build()
	if errors.Is(err, errPageNotFound) {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		slog.Error("build page failed", "path", r.URL.Path, "error", err)
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	if p.pageCache != nil {
		p.pageCache.SetUntil(ctx, key, &cache.Entry{ContentType: pg.contentType, Body: pg.body, AdIDs: pg.adIDs}, pg.expires)
	}
	p.write(w, r, pg)
}

// write sends pg and counts its ad impressions. An ad that reaches its cap
// here must vanish from every cached page, so the cache is purged.
func (p *Public) write(w http.ResponseWriter, r *http.Request, pg *page) {
	if p.site.RecordImpressions(pg.adIDs, middleware.ClientIP(r)) && p.pageCache != nil {
		p.pageCache.InvalidateAll(r.Context())
	}
	w.Header().Set("Content-Type", pg.contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(pg.body)
}

// combined builds the sidebar feed from the newest articles and albums.
func (p *Public) combined(limit int) ([]feed.Entry, error) {
	articles, err := p.articles.ListRecent(limit)
	if err != nil {
		return nil, err
	}
	albums, err := p.albums.ListRecent(limit)
	if err != nil {
		return nil, err
	}
	return p.feed.Assemble(articles, albums), nil
}

// Home renders the homepage: the newest article, the next seven, a tab of
// albums for every category that has any, and the combined feed.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, func() (*page, error) {
		sc, err := p.site.Build()
		if err != nil {
			return nil, err
		}

		recent, err := p.articles.ListRecent(homeOtherPosts + 1)
		if err != nil {
			return nil, err
		}
		featured, others := splitFeatured(p.views.articleCards(recent))

		cats, err := p.categories.List()
		if err != nil {
			return nil, err
		}
		tabs := []AlbumTab{}
		for _, c := range store.WithAlbums(cats) {
			albums, err := p.albums.ListByCategory(c.ID, homeTabAlbums)
			if err != nil {
				return nil, err
			}
			if len(albums) > 0 {
				tabs = append(tabs, p.views.albumTab(&c, albums))
			}
		}

		entries, err := p.combined(feedKindLimit)
		if err != nil {
			return nil, err
		}

		return jsonPage(HomeView{
			Site:      sc,
			Featured:  featured,
			Posts:     others,
			AlbumTabs: tabs,
			Feed:      entries,
		}, sc)
	})
}

// Category renders one category: its newest article, the others, its
// albums as a tab and a feed of both.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	p.serve(w, r, func() (*page, error) {
		cat, err := p.categories.FindBySlug(slugParam)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, errPageNotFound
		}

		sc, err := p.site.Build()
		if err != nil {
			return nil, err
		}

		articles, err := p.articles.ListByCategory(cat.ID, categoryListLimit)
		if err != nil {
			return nil, err
		}
		albums, err := p.albums.ListByCategory(cat.ID, categoryListLimit)
		if err != nil {
			return nil, err
		}
		featured, others := splitFeatured(p.views.articleCards(articles))

		tabs := []AlbumTab{}
		if len(albums) > 0 {
			tabs = append(tabs, p.views.albumTab(cat, albums))
		}

		return jsonPage(CategoryView{
			Site:      sc,
			Category:  *cat,
			Featured:  featured,
			Posts:     others,
			Albums:    p.views.albumCards(albums),
			AlbumTabs: tabs,
			Feed:      p.feed.Assemble(articles, albums),
		}, sc)
	})
}

// PostByCodeAndSlug serves /post/{code}/{slug}/, redirecting stale slugs.
func (p *Public) PostByCodeAndSlug(w http.ResponseWriter, r *http.Request) {
	res, err := p.posts.ByCodeAndSlug(chi.URLParam(r, "code"), chi.URLParam(r, "slug"))
	p.respondPost(w, r, res, err)
}

// PostByCode serves /post/{code}/.
func (p *Public) PostByCode(w http.ResponseWriter, r *http.Request) {
	res, err := p.posts.ByCode(chi.URLParam(r, "code"))
	p.respondPost(w, r, res, err)
}

// PostByID serves the legacy /p/{id}/ short link, which always redirects.
func (p *Public) PostByID(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	res, err := p.posts.ByID(id)
	p.respondPost(w, r, res, err)
}

func (p *Public) respondPost(w http.ResponseWriter, r *http.Request, res locator.Result[*models.Article], err error) {
	switch {
	case errors.Is(err, locator.ErrNotFound), errors.Is(err, locator.ErrIncompleteAddress):
		respondError(w, r, http.StatusNotFound, "not found")
		return
	case err != nil:
		slog.Error("locate post failed", "path", r.URL.Path, "error", err)
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	if res.Outcome == locator.Redirect {
		http.Redirect(w, r, res.URL, http.StatusMovedPermanently)
		return
	}

	post := res.Item
	p.serve(w, r, func() (*page, error) {
		sc, err := p.site.Build()
		if err != nil {
			return nil, err
		}
		entries, err := p.combined(feedKindLimit)
		if err != nil {
			return nil, err
		}
		return jsonPage(PostView{
			Site: sc,
			Post: p.views.articleDetail(post),
			Feed: entries,
		}, sc)
	})
}

// Album renders an album with its images.
func (p *Public) Album(w http.ResponseWriter, r *http.Request) {
	slugParam := chi.URLParam(r, "slug")

	p.serve(w, r, func() (*page, error) {
		album, err := p.albums.FindBySlug(slugParam)
		if err != nil {
			return nil, err
		}
		if album == nil {
			return nil, errPageNotFound
		}
		if album.Images, err = p.albums.Images(album.ID, detailImagesLimit); err != nil {
			return nil, err
		}

		sc, err := p.site.Build()
		if err != nil {
			return nil, err
		}
		return jsonPage(AlbumView{Site: sc, Album: p.views.albumDetail(album)}, sc)
	})
}

// AlbumImages returns the first fifty images of an album for the gallery
// popup, with the slug of the album's first category.
func (p *Public) AlbumImages(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}

	p.serve(w, r, func() (*page, error) {
		album, err := p.albums.FindByID(id)
		if err != nil {
			return nil, err
		}
		if album == nil {
			return nil, errPageNotFound
		}
		imgs, err := p.albums.Images(album.ID, albumImagesLimit)
		if err != nil {
			return nil, err
		}

		var categorySlug string
		if len(album.Categories) > 0 {
			categorySlug = album.Categories[0].Slug
		}
		return jsonPage(AlbumImagesView{
			Title:        album.Title,
			Description:  album.OrderInstructions,
			CategorySlug: categorySlug,
			Images:       p.views.images(imgs),
		}, nil)
	})
}

// Search matches articles and albums against q, optionally within the
// category named by scope. An empty query returns no results.
func (p *Public) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	scope := strings.TrimSpace(r.URL.Query().Get("scope"))
	if scope == "" {
		scope = "all"
	}

	p.serve(w, r, func() (*page, error) {
		sc, err := p.site.Build()
		if err != nil {
			return nil, err
		}

		view := SearchView{
			Site:   sc,
			Query:  q,
			Scope:  scope,
			Posts:  []ArticleCard{},
			Albums: []AlbumCard{},
			Feed:   []feed.Entry{},
		}
		if q == "" {
			return jsonPage(view, sc)
		}

		storeScope := scope
		if storeScope == "all" {
			storeScope = ""
		}
		articles, err := p.articles.Search(q, storeScope, searchKindLimit)
		if err != nil {
			return nil, err
		}
		albums, err := p.albums.Search(q, storeScope, searchKindLimit)
		if err != nil {
			return nil, err
		}

		view.Posts = p.views.articleCards(articles)
		view.Albums = p.views.albumCards(albums)
		view.Feed = p.feed.Assemble(articles[:min(len(articles), searchFeedLimit)],
			albums[:min(len(albums), searchFeedLimit)])
		return jsonPage(view, sc)
	})
}

// Feed serves the combined timeline as RSS 2.0 with absolute links. An
// unset channel title or description comes from the site settings.
func (p *Public) Feed(w http.ResponseWriter, r *http.Request) {
	p.serve(w, r, func() (*page, error) {
		entries, err := p.combined(rssKindLimit)
		if err != nil {
			return nil, err
		}
		for i := range entries {
			if strings.HasPrefix(entries[i].URL, "/") {
				entries[i].URL = p.channel.Link + entries[i].URL
			}
		}

		ch := p.channel
		if ch.Title == "" || ch.Description == "" {
			st, err := p.site.Settings.Get()
			if err != nil {
				return nil, err
			}
			ch.Title = cmp.Or(ch.Title, st.SiteName)
			ch.Description = cmp.Or(ch.Description, st.AboutText)
		}

		var buf bytes.Buffer
		if err := feed.WriteRSS(&buf, ch, entries); err != nil {
			return nil, err
		}
		return &page{contentType: "application/rss+xml; charset=utf-8", body: buf.Bytes()}, nil
	})
}

// AdClick records a click on an ad and redirects to the advertiser.
func (p *Public) AdClick(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}

	ad, err := p.ads.RecordClick(id, middleware.ClientIP(r))
	if err != nil {
		slog.Error("record ad click failed", "ad_id", id, "error", err)
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if ad == nil || ad.LinkURL == "" {
		respondError(w, r, http.StatusNotFound, "not found")
		return
	}
	if p.clicks != nil {
		p.clicks.RecordAdClick()
	}
	http.Redirect(w, r, ad.LinkURL, http.StatusFound)
}
