// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics collects Prometheus metrics for content addressing and
// exposes them for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements the observer interfaces of the code, locator and
// links packages, plus the ad and page cache counters used by handlers.
type Collector struct {
	codeAttempts  *prometheus.CounterVec
	codeExhausted *prometheus.CounterVec
	lookups       *prometheus.CounterVec
	incomplete    *prometheus.CounterVec
	adClicks      prometheus.Counter
	adImpressions prometheus.Counter
	cacheResults  *prometheus.CounterVec
	invalidations prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		codeAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "azincms_code_attempts_total",
			Help: "Random code draws, by content table.",
		}, []string{"table"}),
		codeExhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "azincms_code_exhausted_total",
			Help: "Code generations abandoned because the keyspace was nearly full.",
		}, []string{"table"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "azincms_locator_lookups_total",
			Help: "Content lookups by address form and outcome.",
		}, []string{"form", "outcome"}),
		incomplete: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "azincms_incomplete_address_total",
			Help: "Links built for objects missing a code or slug.",
		}, []string{"kind"}),
		adClicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "azincms_ad_clicks_total",
			Help: "Recorded ad clicks.",
		}),
		adImpressions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "azincms_ad_impressions_total",
			Help: "Recorded ad impressions.",
		}),
		cacheResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "azincms_page_cache_total",
			Help: "Page cache lookups by result (hit, miss).",
		}, []string{"result"}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "azincms_page_cache_invalidations_total",
			Help: "Full page cache invalidations triggered by admin writes.",
		}),
	}

	reg.MustRegister(
		c.codeAttempts,
		c.codeExhausted,
		c.lookups,
		c.incomplete,
		c.adClicks,
		c.adImpressions,
		c.cacheResults,
		c.invalidations,
	)

	return c
}

// RecordCodeAttempt counts one random draw against table.
func (c *Collector) RecordCodeAttempt(table string) {
	c.codeAttempts.WithLabelValues(table).Inc()
}

// RecordCodeExhausted counts a generation that gave up with ErrExhausted.
func (c *Collector) RecordCodeExhausted(table string) {
	c.codeExhausted.WithLabelValues(table).Inc()
}

// RecordLookup counts a locator lookup.
func (c *Collector) RecordLookup(form, outcome string) {
	c.lookups.WithLabelValues(form, outcome).Inc()
}

// RecordIncompleteAddress counts a link that fell back because the object
// had no code or slug.
func (c *Collector) RecordIncompleteAddress(kind string) {
	c.incomplete.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordAdClick() {
	c.adClicks.Inc()
}

func (c *Collector) RecordAdImpressions(n int) {
	c.adImpressions.Add(float64(n))
}

// RecordCacheResult counts a page cache lookup. hit selects the label.
func (c *Collector) RecordCacheResult(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheResults.WithLabelValues(result).Inc()
}

func (c *Collector) RecordInvalidation() {
	c.invalidations.Inc()
}

// Handler returns the HTTP handler serving metrics for scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
