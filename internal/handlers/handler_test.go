// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"azincms/internal/cache"
	"azincms/internal/database"
	"azincms/internal/feed"
	"azincms/internal/links"
	"azincms/internal/models"
	"azincms/internal/site"
	"azincms/internal/storage"
	"azincms/internal/store"
)

const testSiteURL = "http://example.test"

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "azincms")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "azincms")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a client on DB 15 for page cache tests.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client, err := cache.ConnectValkey(context.Background(),
		envOr("VALKEY_HOST", "localhost"), envOr("VALKEY_PORT", "6379"), os.Getenv("VALKEY_PASSWORD"), 15)
	if err != nil {
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, "page:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

// clickCounter counts recorded ad clicks.
type clickCounter struct{ n atomic.Int64 }

func (c *clickCounter) RecordAdClick() { c.n.Add(1) }

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	db         *sql.DB
	articles   *store.ArticleStore
	albums     *store.AlbumStore
	categories *store.CategoryStore
	ads        *store.AdStore
	menus      *store.MenuStore
	cacheLog   *store.CacheLogStore
	clicks     *clickCounter
	router     chi.Router
}

// newTestEnv wires the public and admin handlers onto a chi router the way
// the server mounts them. pageCache may be nil.
func newTestEnv(t *testing.T, pageCache *cache.PageCache) *testEnv {
	t.Helper()
	db := testDB(t)

	var files *storage.Client
	lb := &links.Builder{FileURL: files.FileURL}

	env := &testEnv{
		db:         db,
		articles:   store.NewArticleStore(db, nil),
		albums:     store.NewAlbumStore(db, nil),
		categories: store.NewCategoryStore(db),
		ads:        store.NewAdStore(db),
		menus:      store.NewMenuStore(db),
		cacheLog:   store.NewCacheLogStore(db),
		clicks:     &clickCounter{},
	}
	footer := store.NewFooterStore(db)
	settings := store.NewSiteSettingStore(db)

	sb := &site.Builder{
		Settings:   settings,
		Menus:      env.menus,
		Footer:     footer,
		Categories: env.categories,
		Ads:        env.ads,
		Links:      lb,
	}

	pub := NewPublic(PublicDeps{
		Articles:   env.articles,
		Albums:     env.albums,
		Categories: env.categories,
		Ads:        env.ads,
		Site:       sb,
		Links:      lb,
		PageCache:  pageCache,
		Clicks:     env.clicks,
		Channel:    feed.Channel{Title: "Test", Link: testSiteURL, Description: "test feed"},
	})
	adm := NewAdmin(AdminDeps{
		Articles:   env.articles,
		Albums:     env.albums,
		Categories: env.categories,
		Ads:        env.ads,
		Footer:     footer,
		Menus:      env.menus,
		Settings:   settings,
		CacheLog:   env.cacheLog,
		PageCache:  pageCache,
		Storage:    files,
	})

	r := chi.NewRouter()
	r.Get("/", pub.Home)
	r.Get("/search/", pub.Search)
	r.Get("/feed/", pub.Feed)
	r.Get("/category/{slug}/", pub.Category)
	r.Get("/album/{slug}/", pub.Album)
	r.Get("/ajax/album-images/{id}/", pub.AlbumImages)
	r.Get("/post/{code}/{slug}/", pub.PostByCodeAndSlug)
	r.Get("/post/{code}/", pub.PostByCode)
	r.Get("/p/{id}/", pub.PostByID)
	r.Get("/ads/{id}/click", pub.AdClick)
	r.Route("/admin/api", func(r chi.Router) {
		r.Post("/articles", adm.CreateArticle)
		r.Get("/articles/{id}", adm.GetArticle)
		r.Put("/articles/{id}", adm.UpdateArticle)
		r.Delete("/articles/{id}", adm.DeleteArticle)
		r.Post("/albums/{id}/images", adm.UploadAlbumImage)
		r.Post("/categories", adm.CreateCategory)
		r.Put("/settings", adm.UpdateSettings)
		r.Post("/menus/{id}/items", adm.AddMenuItem)
		r.Get("/ads/{id}/events", adm.AdEvents)
		r.Post("/media", adm.UploadMedia)
		r.Get("/cache/log", adm.CacheLog)
		r.Post("/cache/purge", adm.PurgeCache)
	})
	env.router = r
	return env
}

// do sends a request through the router. body, if not nil, is sent as JSON.
func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

// uniq returns a name no other test run will use.
func uniq(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

func (e *testEnv) createCategory(t *testing.T) *models.Category {
	t.Helper()
	c, err := e.categories.Create(&models.Category{Name: uniq("Category")})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	t.Cleanup(func() { e.db.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

func (e *testEnv) createArticle(t *testing.T, a *models.Article) *models.Article {
	t.Helper()
	if a.Title == "" {
		a.Title = uniq("Article")
	}
	created, err := e.articles.Create(a)
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	t.Cleanup(func() { e.db.Exec("DELETE FROM articles WHERE id = $1", created.ID) })
	return created
}

func (e *testEnv) createAlbum(t *testing.T, a *models.Album) *models.Album {
	t.Helper()
	if a.Title == "" {
		a.Title = uniq("Album")
	}
	created, err := e.albums.Create(a)
	if err != nil {
		t.Fatalf("create album: %v", err)
	}
	t.Cleanup(func() { e.db.Exec("DELETE FROM albums WHERE id = $1", created.ID) })
	return created
}

func (e *testEnv) createAd(t *testing.T, a *models.Ad) *models.Ad {
	t.Helper()
	created, err := e.ads.Create(a)
	if err != nil {
		t.Fatalf("create ad: %v", err)
	}
	t.Cleanup(func() { e.db.Exec("DELETE FROM ads WHERE id = $1", created.ID) })
	return created
}

// cleanupArticle removes an article created through the admin API.
func (e *testEnv) cleanupArticle(t *testing.T, id int64) {
	t.Cleanup(func() { e.db.Exec("DELETE FROM articles WHERE id = $1", id) })
}
