// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package links

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoRoute is returned by Reverse for unknown names or bad parameters.
var ErrNoRoute = errors.New("links: no matching route")

// route is a named public path. params lists the placeholders in the order
// positional arguments fill them.
type route struct {
	pattern string
	params  []string
}

// routes holds the names menu items may refer to. Names may carry a "blog:"
// namespace prefix, which is ignored.
var routes = map[string]route{
	"post_list":                {pattern: "/"},
	"search":                   {pattern: "/search/"},
	"feed":                     {pattern: "/feed/"},
	"category_albums":          {pattern: "/category/{slug}/", params: []string{"slug"}},
	"album_detail":             {pattern: "/album/{slug}/", params: []string{"slug"}},
	"ajax_album_images":        {pattern: "/ajax/album-images/{album_id}/", params: []string{"album_id"}},
	"object_by_code_with_slug": {pattern: "/post/{code}/{slug}/", params: []string{"code", "slug"}},
	"object_by_code":           {pattern: "/post/{code}/", params: []string{"code"}},
	"post_detail_by_id":        {pattern: "/p/{pk}/", params: []string{"pk"}},
}

// Reverse builds the path of a named route. Either args or kwargs may be
// given, not both, and every placeholder must be filled.
func Reverse(name string, args []string, kwargs map[string]string) (string, error) {
	r, ok := routes[strings.TrimPrefix(name, "blog:")]
	if !ok {
		return "", fmt.Errorf("reverse %q: %w", name, ErrNoRoute)
	}
	if len(args) > 0 && len(kwargs) > 0 {
		return "", fmt.Errorf("reverse %q: mixed positional and keyword params: %w", name, ErrNoRoute)
	}

	values := make(map[string]string, len(r.params))
	switch {
	case len(kwargs) > 0:
		if len(kwargs) != len(r.params) {
			return "", fmt.Errorf("reverse %q: want %d params, got %d: %w", name, len(r.params), len(kwargs), ErrNoRoute)
		}
		for _, p := range r.params {
			v, ok := kwargs[p]
			if !ok {
				return "", fmt.Errorf("reverse %q: missing %q: %w", name, p, ErrNoRoute)
			}
			values[p] = v
		}
	default:
		if len(args) != len(r.params) {
			return "", fmt.Errorf("reverse %q: want %d params, got %d: %w", name, len(r.params), len(args), ErrNoRoute)
		}
		for i, p := range r.params {
			values[p] = args[i]
		}
	}

	path := r.pattern
	for p, v := range values {
		if v == "" {
			return "", fmt.Errorf("reverse %q: empty %q: %w", name, p, ErrNoRoute)
		}
		path = strings.Replace(path, "{"+p+"}", url.PathEscape(v), 1)
	}
	return path, nil
}

// ParseParams splits a menu item's parameter string. "pk=1,slug=abc" gives
// keyword params, "1,abc" gives positional ones. Blank parts are skipped.
func ParseParams(raw string) (args []string, kwargs map[string]string) {
	var parts []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	keyword := false
	for _, p := range parts {
		if strings.Contains(p, "=") {
			keyword = true
			break
		}
	}
	if !keyword {
		return parts, nil
	}

	kwargs = make(map[string]string, len(parts))
	for _, p := range parts {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		kwargs[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return nil, kwargs
}

// MenuItem resolves the link of a navigation entry. A named route wins
// when it reverses; otherwise the raw URL is used, else the placeholder.
func MenuItem(namedURL, params, rawURL string) string {
	if namedURL != "" {
		args, kwargs := ParseParams(params)
		if u, err := Reverse(namedURL, args, kwargs); err == nil {
			return u
		}
	}
	if rawURL != "" {
		return rawURL
	}
	return Placeholder
}
