// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings
// and collision-free slug assignment against a table of existing slugs.
package slug

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Generate creates a URL-friendly slug from the given string. Letters and
// digits of any script are kept; every other run of characters becomes a
// single hyphen.
// Example: "Hello, World! 2026" → "hello-world-2026", "سلام دنیا!!!" → "سلام-دنیا"
func Generate(s string) string {
	s = norm.NFKC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// Checker reports whether a slug is already taken in a table. excludeID is
// the ID of the item being saved (0 for a new item) and must be ignored so
// that re-saving an item does not collide with itself.
type Checker interface {
	SlugExists(slug string, excludeID int64) (bool, error)
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(slug string, excludeID int64) (bool, error)

// SlugExists calls f.
func (f CheckerFunc) SlugExists(slug string, excludeID int64) (bool, error) {
	return f(slug, excludeID)
}

// MaxLength is the size of every slug column, in characters.
const MaxLength = 220

// Resolver assigns unique slugs within one table. Prefix names the
// synthetic base used when a title yields no usable characters, e.g.
// "post" gives "post-1767225600". MaxLen caps the full slug, counter
// suffix included; zero means MaxLength.
type Resolver struct {
	Prefix string
	MaxLen int
	Now    func() time.Time
}

// NewResolver returns a Resolver with the given fallback prefix.
func NewResolver(prefix string) *Resolver {
	return &Resolver{Prefix: prefix, MaxLen: MaxLength, Now: time.Now}
}

// Base returns the normalized slug for title, or the timestamp fallback
// when normalization leaves nothing.
func (r *Resolver) Base(title string) string {
	if base := Generate(title); base != "" {
		return base
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	prefix := r.Prefix
	if prefix == "" {
		prefix = "item"
	}
	return fmt.Sprintf("%s-%d", prefix, now().Unix())
}

// Resolve returns the first free slug among base, base-1, base-2, …
// The check and the later insert are not atomic; callers rely on the
// unique index and retry on conflict.
func (r *Resolver) Resolve(title string, checker Checker, excludeID int64) (string, error) {
	base := r.Base(title)
	candidate := r.fit(base, "")
	for n := 1; ; n++ {
		taken, err := checker.SlugExists(candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = r.fit(base, fmt.Sprintf("-%d", n))
	}
}

// fit shortens base so that base+suffix stays within MaxLen characters.
func (r *Resolver) fit(base, suffix string) string {
	limit := r.MaxLen
	if limit <= 0 {
		limit = MaxLength
	}
	limit -= utf8.RuneCountInString(suffix)

	runes := []rune(base)
	if len(runes) > limit {
		base = strings.TrimRight(string(runes[:max(limit, 0)]), "-")
	}
	return base + suffix
}
