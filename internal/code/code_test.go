package code

import (
	"bytes"
	"errors"
	"testing"
)

// tableChecker is an in-memory code table. collide forces the first N
// lookups to report a collision regardless of content.
type tableChecker struct {
	codes   map[string]bool
	collide int
	count   int
	calls   int
	err     error
}

func (c *tableChecker) CodeExists(code string) (bool, error) {
	c.calls++
	if c.err != nil {
		return false, c.err
	}
	if c.calls <= c.collide {
		return true, nil
	}
	return c.codes[code], nil
}

func (c *tableChecker) CodeCount() (int, error) {
	if c.count > 0 {
		return c.count, nil
	}
	return len(c.codes), nil
}

type countingObserver struct {
	attempts  int
	exhausted int
}

func (o *countingObserver) RecordCodeAttempt(string)   { o.attempts++ }
func (o *countingObserver) RecordCodeExhausted(string) { o.exhausted++ }

func TestFormat(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "000000"},
		{42, "000042"},
		{123456, "123456"},
		{999999, "999999"},
	}
	for _, tt := range tests {
		if got := Format(tt.n); got != tt.want {
			t.Errorf("Format(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"000000", true},
		{"042117", true},
		{"42117", false},
		{"0421170", false},
		{"04a117", false},
		{"", false},
		{"۱۲۳۴۵۶", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.in); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGenerateZeroPadded(t *testing.T) {
	g := NewGenerator("articles", nil)
	g.Rand = bytes.NewReader(make([]byte, 64))

	got, err := g.Generate(&tableChecker{codes: map[string]bool{}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "000000" {
		t.Errorf("got %q, want leading zeros preserved as %q", got, "000000")
	}
}

func TestGenerateUnique(t *testing.T) {
	checker := &tableChecker{codes: map[string]bool{}}
	g := NewGenerator("articles", nil)

	for i := 0; i < 2000; i++ {
		c, err := g.Generate(checker)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if !Valid(c) {
			t.Fatalf("invalid code %q", c)
		}
		if checker.codes[c] {
			t.Fatalf("duplicate code %q", c)
		}
		checker.codes[c] = true
	}
}

func TestGenerateRetriesOnCollision(t *testing.T) {
	obs := &countingObserver{}
	checker := &tableChecker{codes: map[string]bool{}, collide: 3}
	g := NewGenerator("albums", obs)

	if _, err := g.Generate(checker); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if obs.attempts != 4 {
		t.Errorf("attempts: got %d, want 4", obs.attempts)
	}
}

func TestGenerateFallbackLoop(t *testing.T) {
	obs := &countingObserver{}
	// More collisions than the attempt budget, but the table is nearly empty.
	checker := &tableChecker{codes: map[string]bool{}, collide: DefaultAttempts + 5}
	g := NewGenerator("articles", obs)

	c, err := g.Generate(checker)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !Valid(c) {
		t.Errorf("invalid code %q", c)
	}
	if obs.attempts != DefaultAttempts+6 {
		t.Errorf("attempts: got %d, want %d", obs.attempts, DefaultAttempts+6)
	}
	if obs.exhausted != 0 {
		t.Errorf("exhausted should not be recorded, got %d", obs.exhausted)
	}
}

func TestGenerateExhausted(t *testing.T) {
	obs := &countingObserver{}
	checker := &tableChecker{
		codes:   map[string]bool{},
		collide: 1 << 30,
		count:   int(DefaultMaxOccupancy * Keyspace),
	}
	g := NewGenerator("articles", obs)

	_, err := g.Generate(checker)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if checker.calls != DefaultAttempts {
		t.Errorf("lookups: got %d, want %d", checker.calls, DefaultAttempts)
	}
	if obs.exhausted != 1 {
		t.Errorf("exhausted events: got %d, want 1", obs.exhausted)
	}
}

func TestGenerateCheckerError(t *testing.T) {
	boom := errors.New("connection refused")
	g := NewGenerator("articles", nil)

	_, err := g.Generate(&tableChecker{err: boom})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped checker error, got %v", err)
	}
}
