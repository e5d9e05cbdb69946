// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"
)

// Channel describes the site publishing the feed.
type Channel struct {
	Title       string
	Link        string // absolute site URL, no trailing slash
	Description string
	Language    string
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title    string  `xml:"title"`
	Link     string  `xml:"link"`
	GUID     rssGUID `xml:"guid"`
	Category string  `xml:"category"`
	PubDate  string  `xml:"pubDate,omitempty"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// WriteRSS renders entries as an RSS 2.0 document. Entries without an
// address are skipped since readers cannot follow them.
func WriteRSS(w io.Writer, ch Channel, entries []Entry) error {
	base := strings.TrimRight(ch.Link, "/")
	doc := rssDoc{
		Version: "2.0",
		Channel: rssChannel{
			Title:       ch.Title,
			Link:        base + "/",
			Description: ch.Description,
			Language:    ch.Language,
		},
	}

	for _, e := range entries {
		if e.URL == "" || strings.HasPrefix(e.URL, "#") {
			continue
		}
		link := e.URL
		if strings.HasPrefix(link, "/") {
			link = base + link
		}
		item := rssItem{
			Title:    e.Title,
			Link:     link,
			GUID:     rssGUID{Value: link, IsPermaLink: true},
			Category: string(e.Kind),
		}
		if !e.CreatedAt.IsZero() {
			item.PubDate = e.CreatedAt.UTC().Format(time.RFC1123Z)
		}
		doc.Channel.Items = append(doc.Channel.Items, item)
	}
	if len(entries) > 0 && !entries[0].CreatedAt.IsZero() {
		doc.Channel.LastBuildDate = entries[0].CreatedAt.UTC().Format(time.RFC1123Z)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write rss header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode rss: %w", err)
	}
	return enc.Flush()
}
