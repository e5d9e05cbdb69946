package slug

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

// TestGenerate exercises the slug generator with typical titles, special
// characters, non-Latin scripts and boundary conditions.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal titles ---
		{name: "simple two words", input: "Hello World", want: "hello-world"},
		{name: "title with year", input: "Hello World 2026", want: "hello-world-2026"},
		{name: "single word", input: "GoLang", want: "golang"},
		{
			name:  "mixed case sentence",
			input: "The Quick Brown Fox Jumps Over the Lazy Dog",
			want:  "the-quick-brown-fox-jumps-over-the-lazy-dog",
		},

		// --- Special characters become separators ---
		{name: "punctuation marks", input: "Hello, World! Ready?", want: "hello-world-ready"},
		{name: "ampersand and at sign", input: "Rock & Roll @ the Arena", want: "rock-roll-the-arena"},
		{name: "parentheses and brackets", input: "Version (2.0) [Beta]", want: "version-2-0-beta"},
		{name: "slashes and pipes", input: "Frontend/Backend | Full Stack", want: "frontend-backend-full-stack"},
		{name: "underscore", input: "snake_case_title", want: "snake-case-title"},

		// --- Unicode ---
		{name: "persian title", input: "سلام دنیا!!!", want: "سلام-دنیا"},
		{name: "persian with zero width non-joiner", input: "خانه‌آذین", want: "خانه-آذین"},
		{name: "persian digits kept", input: "سال ۱۴۰۴", want: "سال-۱۴۰۴"},
		{name: "accented latin kept", input: "Café Résumé", want: "café-résumé"},
		{name: "decomposed accent composed", input: "Cafe\u0301", want: "caf\u00e9"},
		{name: "german umlauts lowercased", input: "Über die Brücke", want: "über-die-brücke"},
		{name: "fullwidth letters folded", input: "ＧＯ Ｌａｎｇ", want: "go-lang"},
		{name: "emoji stripped", input: "Hello 🌍 World", want: "hello-world"},

		// --- Whitespace and hyphens ---
		{name: "leading and trailing spaces", input: "  hello world  ", want: "hello-world"},
		{name: "multiple consecutive spaces collapsed", input: "hello    world", want: "hello-world"},
		{name: "tabs and newlines", input: "hello\tworld\nagain", want: "hello-world-again"},
		{name: "leading hyphens", input: "---hello world", want: "hello-world"},
		{name: "trailing hyphens", input: "hello world---", want: "hello-world"},
		{name: "single hyphen preserved", input: "well-known fact", want: "well-known-fact"},

		// --- Edge cases ---
		{name: "empty string", input: "", want: ""},
		{name: "only spaces", input: "     ", want: ""},
		{name: "only special characters", input: "!@#$%^&*()", want: ""},
		{name: "only hyphens", input: "-----", want: ""},
		{name: "single character", input: "A", want: "a"},
		{name: "all numbers", input: "123456", want: "123456"},
		{name: "date-like string", input: "2026-02-25", want: "2026-02-25"},

		// --- Realistic titles ---
		{
			name:  "tech blog title",
			input: "How to Deploy Go Apps on Kubernetes (2026 Edition)",
			want:  "how-to-deploy-go-apps-on-kubernetes-2026-edition",
		},
		{
			name:  "colon separated title",
			input: "Go: The Complete Developer Guide",
			want:  "go-the-complete-developer-guide",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_Idempotent verifies that generating a slug from an already
// valid slug produces the same result.
func TestGenerate_Idempotent(t *testing.T) {
	for _, s := range []string{"hello-world", "my-blog-post-2026", "a", "123", "سلام-دنیا"} {
		t.Run(s, func(t *testing.T) {
			if got := Generate(s); got != s {
				t.Errorf("Generate(%q) = %q, want idempotent result %q", s, got, s)
			}
		})
	}
}

// memoryChecker is a table of taken slugs keyed by slug, valued by owner ID.
type memoryChecker map[string]int64

func (m memoryChecker) SlugExists(slug string, excludeID int64) (bool, error) {
	owner, ok := m[slug]
	if !ok {
		return false, nil
	}
	return owner != excludeID, nil
}

func fixedResolver(prefix string) *Resolver {
	return &Resolver{
		Prefix: prefix,
		Now:    func() time.Time { return time.Unix(1767225600, 0) },
	}
}

func TestResolve(t *testing.T) {
	t.Run("free base is returned as is", func(t *testing.T) {
		got, err := fixedResolver("post").Resolve("Hello World", memoryChecker{}, 0)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got != "hello-world" {
			t.Errorf("got %q, want %q", got, "hello-world")
		}
	})

	t.Run("collisions are numbered in order", func(t *testing.T) {
		taken := memoryChecker{"سلام-دنیا": 1}
		r := fixedResolver("post")

		first, err := r.Resolve("سلام دنیا!!!", taken, 0)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if first != "سلام-دنیا-1" {
			t.Fatalf("first collision: got %q, want %q", first, "سلام-دنیا-1")
		}
		taken[first] = 2

		second, err := r.Resolve("سلام دنیا!!!", taken, 0)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if second != "سلام-دنیا-2" {
			t.Errorf("second collision: got %q, want %q", second, "سلام-دنیا-2")
		}
	})

	t.Run("own slug does not collide", func(t *testing.T) {
		taken := memoryChecker{"hello-world": 7}
		got, err := fixedResolver("post").Resolve("Hello World", taken, 7)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got != "hello-world" {
			t.Errorf("re-save should keep the slug, got %q", got)
		}
	})

	t.Run("symbol-only title falls back to timestamp base", func(t *testing.T) {
		got, err := fixedResolver("album").Resolve("!!!", memoryChecker{}, 0)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got != "album-1767225600" {
			t.Errorf("got %q, want %q", got, "album-1767225600")
		}
	})

	t.Run("fallback base is disambiguated too", func(t *testing.T) {
		taken := memoryChecker{"cat-1767225600": 3}
		got, err := fixedResolver("cat").Resolve("", taken, 0)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got != "cat-1767225600-1" {
			t.Errorf("got %q, want %q", got, "cat-1767225600-1")
		}
	})

	t.Run("checker errors are returned", func(t *testing.T) {
		boom := errors.New("db down")
		checker := CheckerFunc(func(string, int64) (bool, error) { return false, boom })
		_, err := fixedResolver("post").Resolve("Hello", checker, 0)
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped checker error, got %v", err)
		}
	})
}

func TestResolve_MaxLength(t *testing.T) {
	long := strings.Repeat("ب", 300)

	t.Run("long title is cut to the column size", func(t *testing.T) {
		got, err := fixedResolver("post").Resolve(long, memoryChecker{}, 0)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if n := utf8.RuneCountInString(got); n != MaxLength {
			t.Errorf("length: got %d, want %d", n, MaxLength)
		}
	})

	t.Run("counter suffix still fits", func(t *testing.T) {
		base := strings.Repeat("ب", MaxLength)
		taken := memoryChecker{base: 1}
		for n := 1; n <= 10; n++ {
			s := strings.Repeat("ب", MaxLength-len(fmt.Sprint(n))-1) + fmt.Sprintf("-%d", n)
			if n < 10 {
				taken[s] = int64(n + 1)
			}
		}
		got, err := fixedResolver("post").Resolve(long, taken, 0)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		want := strings.Repeat("ب", MaxLength-3) + "-10"
		if got != want {
			t.Errorf("got %d runes ending %q, want %q", utf8.RuneCountInString(got), got[len(got)-3:], "-10")
		}
	})

	t.Run("cut does not leave a trailing hyphen", func(t *testing.T) {
		r := &Resolver{MaxLen: 8}
		got, err := r.Resolve("abcdefg hij", memoryChecker{}, 0)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got != "abcdefg" {
			t.Errorf("got %q, want %q", got, "abcdefg")
		}
	})
}

// TestResolve_Unique assigns many identical titles and checks that every
// resulting slug is distinct.
func TestResolve_Unique(t *testing.T) {
	taken := memoryChecker{}
	r := fixedResolver("post")
	for i := int64(1); i <= 50; i++ {
		s, err := r.Resolve("Same Title", taken, 0)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if _, dup := taken[s]; dup {
			t.Fatalf("duplicate slug %q on iteration %d", s, i)
		}
		taken[s] = i
	}
	if _, ok := taken[fmt.Sprintf("same-title-%d", 49)]; !ok {
		t.Error("expected numbering to reach same-title-49")
	}
}
