// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package site

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"azincms/internal/links"
	"azincms/internal/models"
)

type fakeSettings struct{ err error }

func (f fakeSettings) Get() (models.SiteSettings, error) {
	return models.DefaultSiteSettings(), f.err
}

type fakeMenus struct{ menu *models.Menu }

func (f fakeMenus) FindEnabled(string) (*models.Menu, error) { return f.menu, nil }

type fakeFooter struct {
	links []models.FooterLink
	icons []models.FooterIcon
}

func (f fakeFooter) VisibleLinks() ([]models.FooterLink, error) { return f.links, nil }
func (f fakeFooter) VisibleIcons() ([]models.FooterIcon, error) { return f.icons, nil }

type fakeCategories []models.Category

func (f fakeCategories) List() ([]models.Category, error) { return f, nil }

type fakeAds struct {
	groups   map[models.AdGroup][]models.Ad
	recorded []int64
	capped   []int64
	ip       string
	err      error
}

func (f *fakeAds) ActiveByGroup(time.Time) (map[models.AdGroup][]models.Ad, error) {
	return f.groups, nil
}

func (f *fakeAds) RecordImpressions(ids []int64, ip string) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.recorded = append(f.recorded, ids...)
	f.ip = ip
	return f.capped, nil
}

type impressionCounter struct{ n int }

func (c *impressionCounter) RecordAdImpressions(n int) { c.n += n }

func newBuilder(ads *fakeAds, menu *models.Menu) *Builder {
	return &Builder{
		Settings: fakeSettings{},
		Menus:    fakeMenus{menu: menu},
		Footer: fakeFooter{
			links: []models.FooterLink{{ID: 1, Title: "درباره ما", URL: "/about/", Show: true}},
			icons: []models.FooterIcon{{ID: 2, Title: "instagram", ImageKey: "icons/ig.png", Show: true}},
		},
		Categories: fakeCategories{{ID: 5, Name: "اخبار", Slug: "اخبار", PostCount: 2}},
		Ads:        ads,
		Links:      &links.Builder{FileURL: func(k string) string { return "/media/" + k }},
		Now:        func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func TestBuild(t *testing.T) {
	parent := int64(10)
	menu := &models.Menu{
		ID: 1, Slug: models.MainMenuSlug, Enabled: true,
		Items: []models.MenuItem{
			{ID: 10, Title: "خانه", NamedURL: "blog:post_list", Show: true, Children: []models.MenuItem{
				{ID: 11, ParentID: &parent, Title: "دسته", NamedURL: "category_albums", URLParams: "slug=news", Show: true},
			}},
			{ID: 12, Title: "بیرونی", URL: "https://example.com", Show: true},
			{ID: 13, Title: "خالی", NamedURL: "no_such_route", Show: true},
		},
	}
	ads := &fakeAds{groups: map[models.AdGroup][]models.Ad{
		models.AdGroupHeader:  {{ID: 7, Name: "banner", ImageKey: "ads/b.png", LinkURL: "https://shop.example.com"}},
		models.AdGroupSidebar: {{ID: 8, Name: "code only", ExternalCode: "<script></script>"}},
	}}

	ctx, err := newBuilder(ads, menu).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if ctx.Settings.SiteName != models.DefaultSiteSettings().SiteName {
		t.Errorf("SiteName = %q", ctx.Settings.SiteName)
	}

	var hrefs []string
	var walk func([]models.MenuItem)
	walk = func(items []models.MenuItem) {
		for _, it := range items {
			hrefs = append(hrefs, it.Href)
			walk(it.Children)
		}
	}
	walk(ctx.Menu)
	if diff := cmp.Diff([]string{"/", "/category/news/", "https://example.com", "#"}, hrefs); diff != "" {
		t.Errorf("menu hrefs (-want +got):\n%s", diff)
	}

	if len(ctx.FooterIcons) != 1 || ctx.FooterIcons[0].ImageURL != "/media/icons/ig.png" {
		t.Errorf("footer icons = %+v", ctx.FooterIcons)
	}
	if len(ctx.Categories) != 1 || ctx.Categories[0].URL != "/category/%D8%A7%D8%AE%D8%A8%D8%A7%D8%B1/" {
		t.Errorf("categories = %+v", ctx.Categories)
	}

	wantAds := map[models.AdGroup][]AdView{
		models.AdGroupHeader:  {{ID: 7, Name: "banner", ImageURL: "/media/ads/b.png", ClickURL: "/ads/7/click"}},
		models.AdGroupMain:    {},
		models.AdGroupSidebar: {{ID: 8, Name: "code only", ExternalCode: "<script></script>"}},
	}
	if diff := cmp.Diff(wantAds, ctx.Ads); diff != "" {
		t.Errorf("ads (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{7, 8}, ctx.AdIDs()); diff != "" {
		t.Errorf("AdIDs (-want +got):\n%s", diff)
	}
}

func TestBuildWithoutMenu(t *testing.T) {
	ctx, err := newBuilder(&fakeAds{}, nil).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ctx.Menu == nil || len(ctx.Menu) != 0 {
		t.Errorf("Menu = %#v, want empty non-nil slice", ctx.Menu)
	}
	if ctx.AdIDs() != nil {
		t.Errorf("AdIDs = %v, want nil", ctx.AdIDs())
	}
}

func TestBuildSettingsError(t *testing.T) {
	b := newBuilder(&fakeAds{}, nil)
	b.Settings = fakeSettings{err: errors.New("db down")}
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error")
	}
}

func TestRecordImpressions(t *testing.T) {
	ads := &fakeAds{}
	obs := &impressionCounter{}
	b := newBuilder(ads, nil)
	b.Observer = obs

	b.RecordImpressions(nil, "10.0.0.1")
	if len(ads.recorded) != 0 || obs.n != 0 {
		t.Fatal("no ids should record nothing")
	}

	if b.RecordImpressions([]int64{7, 8}, "10.0.0.1") {
		t.Error("no ad reached its cap")
	}
	if diff := cmp.Diff([]int64{7, 8}, ads.recorded); diff != "" {
		t.Errorf("recorded (-want +got):\n%s", diff)
	}
	if ads.ip != "10.0.0.1" || obs.n != 2 {
		t.Errorf("ip = %q, observed = %d", ads.ip, obs.n)
	}

	ads.capped = []int64{8}
	if !b.RecordImpressions([]int64{8}, "10.0.0.1") {
		t.Error("ad 8 reached its cap and should be reported")
	}

	ads.err = errors.New("db down")
	if b.RecordImpressions([]int64{9}, "10.0.0.1") {
		t.Error("failed recording should not report a cap")
	}
	if obs.n != 3 {
		t.Errorf("observed = %d, want 3; failed recording should not be observed", obs.n)
	}
}

func TestBuildAdsExpireAt(t *testing.T) {
	soon := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	ads := &fakeAds{groups: map[models.AdGroup][]models.Ad{
		models.AdGroupHeader:  {{ID: 1, EndDate: &later}},
		models.AdGroupMain:    {{ID: 2}},
		models.AdGroupSidebar: {{ID: 3, EndDate: &soon}},
	}}
	ctx, err := newBuilder(ads, nil).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !ctx.AdsExpireAt.Equal(soon) {
		t.Errorf("AdsExpireAt = %v, want %v", ctx.AdsExpireAt, soon)
	}

	ctx, err = newBuilder(&fakeAds{}, nil).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !ctx.AdsExpireAt.IsZero() {
		t.Errorf("AdsExpireAt = %v, want zero without end dates", ctx.AdsExpireAt)
	}
}

func TestClickURL(t *testing.T) {
	if got := ClickURL(42); got != "/ads/42/click" {
		t.Errorf("ClickURL(42) = %q", got)
	}
}
