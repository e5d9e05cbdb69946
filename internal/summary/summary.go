// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package summary derives short plain-text previews from rich content.
package summary

import (
	"html"
	"math"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

const (
	// DefaultLength is the preview length used by list and detail views.
	DefaultLength = 200

	// Ellipsis is appended to every truncated preview.
	Ellipsis = "…"

	// minCutRatio is the earliest point, as a share of the limit, at which
	// a word-boundary cut is accepted.
	minCutRatio = 0.4
)

// strict removes every tag and keeps only text nodes. Stripped tags leave
// a space so that adjacent block elements do not glue words together.
var strict = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// entityReplacer normalizes the entities the rich-text editor leaves behind.
var entityReplacer = strings.NewReplacer("&zwnj;", "\u200c", "&nbsp;", " ")

// Source holds the fields a preview can be taken from, in priority order.
// Variants without a short description leave it empty.
type Source struct {
	Summary          string
	ShortDescription string
	Content          string // HTML
}

// Extract returns a preview of at most maxLength characters, plus an
// ellipsis when the text had to be cut. Length is counted in runes. When
// preserveWords is set the cut moves back to the last whitespace, unless
// that would leave less than 40% of maxLength.
func Extract(src Source, maxLength int, preserveWords bool) string {
	text := strings.TrimSpace(src.Summary)
	if text == "" {
		text = strings.TrimSpace(src.ShortDescription)
	}
	if text == "" {
		text = StripHTML(src.Content)
	}
	return Truncate(text, maxLength, preserveWords)
}

// StripHTML removes markup from s and decodes entities.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	s = entityReplacer.Replace(s)
	s = html.UnescapeString(strict.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens text to maxLength runes. See Extract.
func Truncate(text string, maxLength int, preserveWords bool) string {
	if maxLength <= 0 {
		maxLength = DefaultLength
	}
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	cut := trimRightSpace(runes[:maxLength])
	if preserveWords {
		threshold := max(int(math.Ceil(float64(maxLength)*minCutRatio)), 1)
		for i := len(cut) - 1; i >= threshold; i-- {
			if unicode.IsSpace(cut[i]) {
				cut = trimRightSpace(cut[:i])
				break
			}
		}
	}
	return string(cut) + Ellipsis
}

func trimRightSpace(r []rune) []rune {
	for len(r) > 0 && unicode.IsSpace(r[len(r)-1]) {
		r = r[:len(r)-1]
	}
	return r
}
