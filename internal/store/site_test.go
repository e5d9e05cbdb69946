package store

import (
	"testing"

	"github.com/google/uuid"

	"azincms/internal/models"
)

func TestSiteSettingStoreDefaults(t *testing.T) {
	db := testDB(t)
	s := NewSiteSettingStore(db)

	got, err := s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	// Whether or not the row exists, no field may be empty.
	if got.SiteName == "" || got.AboutText == "" || got.CopyrightText == "" {
		t.Errorf("settings have empty fields: %+v", got)
	}
}

func TestSiteSettingStoreSave(t *testing.T) {
	db := testDB(t)
	s := NewSiteSettingStore(db)

	before, err := s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	t.Cleanup(func() { s.Save(before) })

	want := models.SiteSettings{SiteName: "Test Site", AboutText: "about", CopyrightText: "(c)"}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SiteName != want.SiteName || got.AboutText != want.AboutText {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	var rows int
	db.QueryRow(`SELECT COUNT(*) FROM site_settings`).Scan(&rows)
	if rows != 1 {
		t.Errorf("settings rows = %d, want 1", rows)
	}
}

func TestFooterStoreVisibility(t *testing.T) {
	db := testDB(t)
	s := NewFooterStore(db)

	title := "link-" + uuid.NewString()[:8]
	shown, err := s.CreateLink(&models.FooterLink{Title: title, URL: "/a", Show: true})
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	hidden, err := s.CreateLink(&models.FooterLink{Title: title + "-hidden", URL: "/b", Show: false})
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	t.Cleanup(func() {
		s.DeleteLink(shown.ID)
		s.DeleteLink(hidden.ID)
	})

	links, err := s.VisibleLinks()
	if err != nil {
		t.Fatalf("VisibleLinks: %v", err)
	}
	var sawShown, sawHidden bool
	for _, l := range links {
		sawShown = sawShown || l.ID == shown.ID
		sawHidden = sawHidden || l.ID == hidden.ID
	}
	if !sawShown || sawHidden {
		t.Errorf("visible links wrong: shown=%v hidden=%v", sawShown, sawHidden)
	}
}

func TestMenuStoreTree(t *testing.T) {
	db := testDB(t)
	s := NewMenuStore(db)

	slug := "menu-" + uuid.NewString()[:8]
	m, err := s.Create(&models.Menu{Name: "Test", Slug: slug, Enabled: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { db.Exec(`DELETE FROM menus WHERE id = $1`, m.ID) })

	parent, err := s.AddItem(&models.MenuItem{MenuID: m.ID, Title: "Albums", Show: true})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := s.AddItem(&models.MenuItem{MenuID: m.ID, ParentID: &parent.ID, Title: "Summer", NamedURL: "album_detail", URLParams: "summer", Show: true}); err != nil {
		t.Fatalf("AddItem child: %v", err)
	}
	if _, err := s.AddItem(&models.MenuItem{MenuID: m.ID, Title: "Hidden", Show: false, SortOrder: 1}); err != nil {
		t.Fatalf("AddItem hidden: %v", err)
	}

	got, err := s.FindEnabled(slug)
	if err != nil || got == nil {
		t.Fatalf("FindEnabled = %v, %v", got, err)
	}
	if len(got.Items) != 1 || len(got.Items[0].Children) != 1 {
		t.Errorf("tree = %+v", got.Items)
	}

	none, err := s.FindEnabled("missing-" + slug)
	if err != nil || none != nil {
		t.Errorf("FindEnabled(missing) = %v, %v", none, err)
	}
}
