// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package locator resolves the public address forms of coded content
// (code plus slug, code alone, legacy numeric id) to a single item and
// its canonical URL.
package locator

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
)

var (
	// ErrNotFound means no item matches the requested address.
	ErrNotFound = errors.New("locator: not found")

	// ErrIncompleteAddress means an item lacks the code or slug needed to
	// build its canonical URL.
	ErrIncompleteAddress = errors.New("locator: incomplete address")
)

// Addressable is implemented by content that is reachable by code and slug.
type Addressable interface {
	comparable
	Address() (code, slug string)
}

// Finder looks items up by their public code or internal id. A missing
// item is reported as the zero value with a nil error, the same way the
// stores report it.
type Finder[T Addressable] interface {
	FindByCode(code string) (T, error)
	FindByID(id int64) (T, error)
}

// Observer receives one event per lookup. outcome is "found", "redirect",
// "not_found" or "incomplete".
type Observer interface {
	RecordLookup(form, outcome string)
}

// Outcome tells the caller whether to render the item or redirect.
type Outcome int

const (
	Found Outcome = iota
	Redirect
)

func (o Outcome) String() string {
	if o == Redirect {
		return "redirect"
	}
	return "found"
}

// Result is the answer to a lookup. Item is set on Found and also on
// Redirect, so callers can log it. URL is set on Redirect only.
type Result[T Addressable] struct {
	Outcome Outcome
	Item    T
	URL     string
}

// Locator maps address forms onto items held by a Finder.
type Locator[T Addressable] struct {
	finder   Finder[T]
	observer Observer
}

// New creates a Locator. obs may be nil.
func New[T Addressable](finder Finder[T], obs Observer) *Locator[T] {
	return &Locator[T]{finder: finder, observer: obs}
}

// CanonicalURL builds the preferred address of a coded item.
func CanonicalURL(code, slug string) (string, error) {
	if code == "" || slug == "" {
		return "", ErrIncompleteAddress
	}
	return "/post/" + url.PathEscape(code) + "/" + url.PathEscape(slug) + "/", nil
}

// CodeURL builds the slug-less address of a coded item.
func CodeURL(code string) (string, error) {
	if code == "" {
		return "", ErrIncompleteAddress
	}
	return "/post/" + url.PathEscape(code) + "/", nil
}

// ByCodeAndSlug finds the item with the given code. When the supplied slug
// is not the stored one the result redirects to the canonical address.
func (l *Locator[T]) ByCodeAndSlug(code, slug string) (Result[T], error) {
	const form = "code_slug"

	item, err := l.byCode(form, code)
	if err != nil {
		return Result[T]{}, err
	}

	storedCode, storedSlug := item.Address()
	if slug == storedSlug {
		l.record(form, "found")
		return Result[T]{Outcome: Found, Item: item}, nil
	}

	target, err := l.redirectURL(form, storedCode, storedSlug)
	if err != nil {
		return Result[T]{}, err
	}
	l.record(form, "redirect")
	return Result[T]{Outcome: Redirect, Item: item, URL: target}, nil
}

// ByCode finds the item with the given code. No slug is asserted, so the
// item is always returned directly.
func (l *Locator[T]) ByCode(code string) (Result[T], error) {
	const form = "code"

	item, err := l.byCode(form, code)
	if err != nil {
		return Result[T]{}, err
	}
	l.record(form, "found")
	return Result[T]{Outcome: Found, Item: item}, nil
}

// ByID finds the item with the given internal id and always redirects to
// its canonical address. It never renders an item directly.
func (l *Locator[T]) ByID(id int64) (Result[T], error) {
	const form = "id"

	item, err := l.finder.FindByID(id)
	if err != nil {
		return Result[T]{}, fmt.Errorf("locate id %d: %w", id, err)
	}
	var zero T
	if item == zero {
		l.record(form, "not_found")
		return Result[T]{}, ErrNotFound
	}

	code, slug := item.Address()
	target, err := l.redirectURL(form, code, slug)
	if err != nil {
		return Result[T]{}, err
	}
	l.record(form, "redirect")
	return Result[T]{Outcome: Redirect, Item: item, URL: target}, nil
}

func (l *Locator[T]) byCode(form, code string) (T, error) {
	var zero T
	if code == "" {
		l.record(form, "not_found")
		return zero, ErrNotFound
	}
	item, err := l.finder.FindByCode(code)
	if err != nil {
		return zero, fmt.Errorf("locate code %s: %w", code, err)
	}
	if item == zero {
		l.record(form, "not_found")
		return zero, ErrNotFound
	}
	return item, nil
}

// redirectURL prefers the canonical address and settles for the code-only
// address when the stored slug is missing.
func (l *Locator[T]) redirectURL(form, code, slug string) (string, error) {
	target, err := CanonicalURL(code, slug)
	if err == nil {
		return target, nil
	}
	slog.Warn("content address incomplete", "form", form, "code", code, "slug", slug)
	l.record(form, "incomplete")
	return CodeURL(code)
}

func (l *Locator[T]) record(form, outcome string) {
	if l.observer != nil {
		l.observer.RecordLookup(form, outcome)
	}
}
