// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"testing"

	"azincms/internal/models"
)

var sixDigits = regexp.MustCompile(`^[0-9]{6}$`)

func TestAdmin_ArticleLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	cat := env.createCategory(t)

	rec := env.do(t, http.MethodPost, "/admin/api/articles", map[string]any{
		"title":        "Admin created article",
		"content":      "Some *text*",
		"body_format":  "markdown",
		"category_ids": []int64{cat.ID},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created models.Article
	decodeBody(t, rec, &created)
	env.cleanupArticle(t, created.ID)

	if !sixDigits.MatchString(created.Code) {
		t.Errorf("code: got %q, want six digits", created.Code)
	}
	if created.Slug == "" {
		t.Error("slug should be generated from the title")
	}

	id := strconv.FormatInt(created.ID, 10)
	rec = env.do(t, http.MethodPut, "/admin/api/articles/"+id, map[string]any{
		"title": "Renamed",
		"code":  "000000",
		"slug":  "changed",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated models.Article
	decodeBody(t, rec, &updated)
	if updated.Title != "Renamed" {
		t.Errorf("title: got %q", updated.Title)
	}
	if updated.Code != created.Code || updated.Slug != created.Slug {
		t.Errorf("address changed on update: %s/%s -> %s/%s",
			created.Code, created.Slug, updated.Code, updated.Slug)
	}

	if rec := env.do(t, http.MethodGet, "/admin/api/articles/"+id, nil); rec.Code != http.StatusOK {
		t.Errorf("get: expected 200, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/admin/api/articles/"+id, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/admin/api/articles/"+id, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestAdmin_CreateArticle_Errors(t *testing.T) {
	env := newTestEnv(t, nil)
	existing := env.createArticle(t, &models.Article{})

	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing title", map[string]any{"content": "x"}, http.StatusUnprocessableEntity},
		{"bad code", map[string]any{"title": "t", "code": "12"}, http.StatusUnprocessableEntity},
		{"duplicate code", map[string]any{"title": "t", "code": existing.Code, "slug": uniq("s")}, http.StatusConflict},
		{"duplicate slug", map[string]any{"title": "t", "code": "999998", "slug": existing.Slug}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/admin/api/articles", tt.body)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}

	t.Run("malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin/api/articles", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("update missing article", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/admin/api/articles/999999999", map[string]any{"title": "t"})
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestAdmin_Writes_AreLogged(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/admin/api/categories", map[string]any{"name": uniq("Logged")})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var cat models.Category
	decodeBody(t, rec, &cat)
	t.Cleanup(func() { env.db.Exec("DELETE FROM categories WHERE id = $1", cat.ID) })

	entries, err := env.cacheLog.RecentEntries(cacheLogLimit)
	if err != nil {
		t.Fatalf("RecentEntries: %v", err)
	}
	found := false
	for _, e := range entries {
		if e.EntityType == "category" && e.EntityID == cat.ID && e.Action == "create" {
			found = true
		}
	}
	if !found {
		t.Errorf("no cache log entry for category %d", cat.ID)
	}

	rec = env.do(t, http.MethodPost, "/admin/api/categories", map[string]any{"name": cat.Name})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate category name: expected 409, got %d", rec.Code)
	}
}

func TestAdmin_Settings(t *testing.T) {
	env := newTestEnv(t, nil)
	t.Cleanup(func() { env.db.Exec("DELETE FROM site_settings WHERE key = $1", models.SiteSettingsKey) })

	rec := env.do(t, http.MethodPut, "/admin/api/settings", map[string]any{"site_name": "Azin Test"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var st models.SiteSettings
	decodeBody(t, rec, &st)
	if st.SiteName != "Azin Test" {
		t.Errorf("SiteName: got %q", st.SiteName)
	}
	if st.CopyrightText != models.DefaultSiteSettings().CopyrightText {
		t.Errorf("empty copyright should fall back to the default, got %q", st.CopyrightText)
	}
}

func TestAdmin_AddMenuItem(t *testing.T) {
	env := newTestEnv(t, nil)
	m, err := env.menus.Create(&models.Menu{Name: "Test", Slug: uniq("menu"), Enabled: true})
	if err != nil {
		t.Fatalf("create menu: %v", err)
	}
	t.Cleanup(func() { env.db.Exec("DELETE FROM menus WHERE id = $1", m.ID) })
	target := "/admin/api/menus/" + strconv.FormatInt(m.ID, 10) + "/items"

	rec := env.do(t, http.MethodPost, target, map[string]any{
		"title": "News", "named_url": "category_albums", "url_params": "slug=news",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, target, map[string]any{"title": "Broken", "named_url": "nope"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown route: expected 422, got %d", rec.Code)
	}
}

func TestAdmin_AdEvents(t *testing.T) {
	env := newTestEnv(t, nil)
	ad := env.createAd(t, &models.Ad{
		Name: uniq("Ad"), Group: models.AdGroupSidebar, LinkURL: "https://example.com", IsActive: true,
	})
	id := strconv.FormatInt(ad.ID, 10)
	env.do(t, http.MethodGet, "/ads/"+id+"/click", nil)

	rec := env.do(t, http.MethodGet, "/admin/api/ads/"+id+"/events", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var events []models.AdEvent
	decodeBody(t, rec, &events)
	if len(events) != 1 || events[0].Kind != models.AdEventClick {
		t.Errorf("events: got %+v", events)
	}

	if rec := env.do(t, http.MethodGet, "/admin/api/ads/"+id+"/events?limit=x", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: expected 400, got %d", rec.Code)
	}
}

func TestAdmin_Uploads_WithoutStorage(t *testing.T) {
	env := newTestEnv(t, nil)
	album := env.createAlbum(t, &models.Album{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "a.png")
	fw.Write([]byte("not really an image"))
	mw.Close()

	for _, target := range []string{
		"/admin/api/media",
		"/admin/api/albums/" + strconv.FormatInt(album.ID, 10) + "/images",
	} {
		req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body.Bytes()))
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", target, rec.Code)
		}
	}
}
