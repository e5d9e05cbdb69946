package feed

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mmcdole/gofeed"

	"azincms/internal/links"
	"azincms/internal/models"
)

var (
	t1 = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 = time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	t3 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
)

func TestAssembleOrdering(t *testing.T) {
	articles := []models.Article{
		{Code: "000001", Slug: "old", Title: "old post", CreatedAt: t1},
		{Code: "000002", Slug: "undated", Title: "undated post"},
		{Code: "000003", Slug: "new", Title: "new post", CreatedAt: t3},
		{Code: "000004", Slug: "tie", Title: "tie post", CreatedAt: t2},
	}
	albums := []models.Album{
		{Slug: "tie-album", Title: "tie album", CreatedAt: t2},
		{Slug: "undated-album", Title: "undated album"},
		{Slug: "mid", Title: "mid album", CreatedAt: t2.Add(time.Hour)},
	}

	got := New(&links.Builder{}).Assemble(articles, albums)
	want := []Entry{
		{Kind: KindPost, Title: "new post", CreatedAt: t3, URL: "/post/000003/new/"},
		{Kind: KindAlbum, Title: "mid album", CreatedAt: t2.Add(time.Hour), URL: "/album/mid/"},
		{Kind: KindPost, Title: "tie post", CreatedAt: t2, URL: "/post/000004/tie/"},
		{Kind: KindAlbum, Title: "tie album", CreatedAt: t2, URL: "/album/tie-album/"},
		{Kind: KindPost, Title: "old post", CreatedAt: t1, URL: "/post/000001/old/"},
		{Kind: KindPost, Title: "undated post", URL: "/post/000002/undated/"},
		{Kind: KindAlbum, Title: "undated album", URL: "/album/undated-album/"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Assemble() mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleFallbackURLs(t *testing.T) {
	got := New(nil).Assemble(
		[]models.Article{{ID: 1, Title: "no address", CreatedAt: t1}},
		[]models.Album{{ID: 2, Title: "no slug", CreatedAt: t1}},
	)
	for _, e := range got {
		if e.URL != links.Placeholder {
			t.Errorf("%s %q: URL = %q, want placeholder", e.Kind, e.Title, e.URL)
		}
	}
}

func TestAssembleEmpty(t *testing.T) {
	got := New(nil).Assemble(nil, nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Assemble(nil, nil) = %#v, want empty non-nil slice", got)
	}
}

func TestAssembleDoesNotShareState(t *testing.T) {
	a := New(nil)
	first := a.Assemble([]models.Article{{Code: "000001", Slug: "a", Title: "a", CreatedAt: t1}}, nil)
	second := a.Assemble(nil, []models.Album{{Slug: "b", Title: "b", CreatedAt: t2}})
	if len(first) != 1 || len(second) != 1 || second[0].Kind != KindAlbum {
		t.Errorf("calls leaked state: first=%v second=%v", first, second)
	}
}

func TestWriteRSS(t *testing.T) {
	entries := []Entry{
		{Kind: KindPost, Title: "Post & more", CreatedAt: t3, URL: "/post/000003/new/"},
		{Kind: KindAlbum, Title: "Album", CreatedAt: t2, URL: "/album/mid/"},
		{Kind: KindPost, Title: "Broken", CreatedAt: t1, URL: links.Placeholder},
	}

	var buf bytes.Buffer
	err := WriteRSS(&buf, Channel{Title: "Azin", Link: "https://example.com/", Description: "news", Language: "fa"}, entries)
	if err != nil {
		t.Fatalf("WriteRSS: %v", err)
	}

	parsed, err := gofeed.NewParser().ParseString(buf.String())
	if err != nil {
		t.Fatalf("parse generated feed: %v\n%s", err, buf.String())
	}
	if parsed.Title != "Azin" || parsed.Link != "https://example.com/" {
		t.Errorf("channel = %q %q", parsed.Title, parsed.Link)
	}
	if len(parsed.Items) != 2 {
		t.Fatalf("items = %d, want 2 (placeholder entry skipped)", len(parsed.Items))
	}
	if parsed.Items[0].Title != "Post & more" {
		t.Errorf("title = %q", parsed.Items[0].Title)
	}
	if parsed.Items[0].Link != "https://example.com/post/000003/new/" {
		t.Errorf("link = %q", parsed.Items[0].Link)
	}
	if parsed.Items[1].PublishedParsed == nil || !parsed.Items[1].PublishedParsed.Equal(t2) {
		t.Errorf("pubDate = %v, want %v", parsed.Items[1].PublishedParsed, t2)
	}
}
