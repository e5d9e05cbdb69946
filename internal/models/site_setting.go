// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// SiteSettingsKey is the fixed primary key of the single settings row.
const SiteSettingsKey = "site"

// SiteSettings holds site-wide branding and footer text. There is exactly
// one row, addressed by SiteSettingsKey.
type SiteSettings struct {
	SiteName      string    `json:"site_name"`
	AboutText     string    `json:"about_text"`
	CopyrightText string    `json:"copyright_text"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DefaultSiteSettings is used when the settings row has not been saved yet.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		SiteName:      "خانه‌آذین",
		AboutText:     "خانه‌آذین پلتفرمی برای معرفی محصولات و نمونه‌کارها.",
		CopyrightText: "© ۱۴۰۴ خانه‌آذین",
	}
}

// WithDefaults fills empty fields from DefaultSiteSettings.
func (s SiteSettings) WithDefaults() SiteSettings {
	d := DefaultSiteSettings()
	if s.SiteName == "" {
		s.SiteName = d.SiteName
	}
	if s.AboutText == "" {
		s.AboutText = d.AboutText
	}
	if s.CopyrightText == "" {
		s.CopyrightText = d.CopyrightText
	}
	return s
}

// FooterLink is a text link shown in the site footer.
type FooterLink struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	SortOrder int    `json:"sort_order"`
	Show      bool   `json:"show"`
}

// FooterIcon is an icon link in the footer. It may be an uploaded image,
// an icon font class, or a custom HTML snippet.
type FooterIcon struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	ImageKey  string `json:"image_key,omitempty"`
	URL       string `json:"url"`
	IconClass string `json:"icon_class"`
	HTML      string `json:"html"`
	SortOrder int    `json:"sort_order"`
	Show      bool   `json:"show"`
}
