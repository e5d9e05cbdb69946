// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package code generates the short numeric codes that address articles and
// albums in public URLs (/post/042117/...). Codes are six decimal digits,
// zero-padded, and unique within one content table.
package code

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
)

const (
	// Length is the number of digits in a code.
	Length = 6

	// Keyspace is the number of distinct codes.
	Keyspace = 1_000_000

	// DefaultAttempts is how many random draws are made before the
	// generator checks table occupancy.
	DefaultAttempts = 10

	// DefaultMaxOccupancy is the share of the keyspace above which the
	// generator refuses to keep retrying.
	DefaultMaxOccupancy = 0.9
)

// ErrExhausted is returned when the table is too full for random draws to
// find a free code in reasonable time.
var ErrExhausted = errors.New("code keyspace exhausted")

// Checker looks up codes in one content table.
type Checker interface {
	// CodeExists reports whether code is already assigned.
	CodeExists(code string) (bool, error)
	// CodeCount returns the number of assigned codes.
	CodeCount() (int, error)
}

// Observer receives generation events. Implemented by the metrics collector.
type Observer interface {
	RecordCodeAttempt(table string)
	RecordCodeExhausted(table string)
}

// Generator draws random codes and checks them against a table.
type Generator struct {
	Table        string // used for logs and metrics only
	Attempts     int
	MaxOccupancy float64
	Rand         io.Reader
	Observer     Observer
}

// NewGenerator returns a Generator for the named table with default limits.
func NewGenerator(table string, obs Observer) *Generator {
	return &Generator{
		Table:        table,
		Attempts:     DefaultAttempts,
		MaxOccupancy: DefaultMaxOccupancy,
		Rand:         rand.Reader,
		Observer:     obs,
	}
}

// Format zero-pads n to a six-digit code.
func Format(n int64) string {
	return fmt.Sprintf("%0*d", Length, n)
}

// Valid reports whether s looks like a code: exactly six ASCII digits.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Generate returns a code not yet present in the table. After Attempts
// collisions it checks occupancy: above MaxOccupancy it gives up with
// ErrExhausted, otherwise it keeps drawing until a free code turns up.
func (g *Generator) Generate(checker Checker) (string, error) {
	attempts := g.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	for i := 0; i < attempts; i++ {
		c, free, err := g.try(checker)
		if err != nil {
			return "", err
		}
		if free {
			return c, nil
		}
	}

	count, err := checker.CodeCount()
	if err != nil {
		return "", fmt.Errorf("count codes: %w", err)
	}
	maxOcc := g.MaxOccupancy
	if maxOcc <= 0 || maxOcc > 1 {
		maxOcc = DefaultMaxOccupancy
	}
	if float64(count) >= maxOcc*Keyspace {
		slog.Error("code keyspace exhausted", "table", g.Table, "assigned", count)
		if g.Observer != nil {
			g.Observer.RecordCodeExhausted(g.Table)
		}
		return "", fmt.Errorf("%s: %d of %d codes assigned: %w", g.Table, count, Keyspace, ErrExhausted)
	}

	slog.Warn("code collisions exceeded attempt budget, continuing",
		"table", g.Table, "attempts", attempts, "assigned", count)
	for {
		c, free, err := g.try(checker)
		if err != nil {
			return "", err
		}
		if free {
			return c, nil
		}
	}
}

// try draws one code and reports whether it is free.
func (g *Generator) try(checker Checker) (string, bool, error) {
	if g.Observer != nil {
		g.Observer.RecordCodeAttempt(g.Table)
	}
	c, err := g.draw()
	if err != nil {
		return "", false, err
	}
	exists, err := checker.CodeExists(c)
	if err != nil {
		return "", false, fmt.Errorf("check code %s: %w", c, err)
	}
	return c, !exists, nil
}

// draw returns a uniformly random code in [000000, 999999].
func (g *Generator) draw() (string, error) {
	r := g.Rand
	if r == nil {
		r = rand.Reader
	}
	n, err := rand.Int(r, big.NewInt(Keyspace))
	if err != nil {
		return "", fmt.Errorf("draw code: %w", err)
	}
	return Format(n.Int64()), nil
}
