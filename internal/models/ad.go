// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// AdGroup is the page slot an ad is displayed in.
type AdGroup string

const (
	AdGroupHeader  AdGroup = "header"
	AdGroupMain    AdGroup = "main"
	AdGroupSidebar AdGroup = "sidebar"
)

// AdGroups lists every slot in display order.
var AdGroups = []AdGroup{AdGroupHeader, AdGroupMain, AdGroupSidebar}

// Valid reports whether g is a known slot.
func (g AdGroup) Valid() bool {
	for _, known := range AdGroups {
		if g == known {
			return true
		}
	}
	return false
}

// Ad is an advertising banner: an image with a link, or external HTML/JS.
type Ad struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Group            AdGroup    `json:"group"`
	ImageKey         string     `json:"image_key,omitempty"`
	LinkURL          string     `json:"link_url"`
	ExternalCode     string     `json:"external_code"`
	IsActive         bool       `json:"is_active"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	MaxImpressions   *int       `json:"max_impressions,omitempty"`
	ImpressionsCount int        `json:"impressions_count"`
	ClicksCount      int        `json:"clicks_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsCurrentlyActive reports whether the ad may be shown at now: it must be
// enabled, inside its scheduling window and below its impression cap.
func (a *Ad) IsCurrentlyActive(now time.Time) bool {
	if !a.IsActive {
		return false
	}
	if a.StartDate != nil && now.Before(*a.StartDate) {
		return false
	}
	if a.EndDate != nil && now.After(*a.EndDate) {
		return false
	}
	if a.MaxImpressions != nil && *a.MaxImpressions > 0 && a.ImpressionsCount >= *a.MaxImpressions {
		return false
	}
	return true
}

// AdEventKind distinguishes impressions from clicks.
type AdEventKind string

const (
	AdEventView  AdEventKind = "view"
	AdEventClick AdEventKind = "click"
)

// AdEvent records a single impression or click.
type AdEvent struct {
	ID        uuid.UUID   `json:"id"`
	AdID      int64       `json:"ad_id"`
	Kind      AdEventKind `json:"kind"`
	IPAddress string      `json:"ip_address"`
	CreatedAt time.Time   `json:"created_at"`
}
