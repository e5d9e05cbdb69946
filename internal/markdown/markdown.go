// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown renders article bodies to HTML. Bodies are stored either
// as HTML or as Markdown; Markdown goes through goldmark, HTML is returned
// as stored. Raw HTML inside Markdown is passed through, since both formats
// are written by site editors.
package markdown

import (
	"bytes"
	"fmt"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"azincms/internal/models"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
	),
)

// ToHTML converts Markdown source into HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Body returns the HTML body of an article in either storage format.
func Body(format models.BodyFormat, content string) (string, error) {
	switch format {
	case models.BodyFormatMarkdown:
		out, err := ToHTML(content)
		if err != nil {
			return "", fmt.Errorf("render markdown: %w", err)
		}
		return out, nil
	case models.BodyFormatHTML, "":
		return content, nil
	default:
		return "", fmt.Errorf("unknown body format %q", format)
	}
}
