// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"errors"
	"testing"
)

type fakeAssigner struct {
	missing  []int64
	assigned []int64
	failOn   int64
}

func (f *fakeAssigner) MissingCodes() ([]int64, error) { return f.missing, nil }

func (f *fakeAssigner) AssignCode(id int64) (string, error) {
	if id == f.failOn {
		return "", errors.New("keyspace exhausted")
	}
	f.assigned = append(f.assigned, id)
	return "000001", nil
}

func TestPopulateCodes(t *testing.T) {
	t.Run("assigns every missing code", func(t *testing.T) {
		f := &fakeAssigner{missing: []int64{3, 5, 8}}
		n, err := populateCodes(f, false)
		if err != nil {
			t.Fatalf("populateCodes: %v", err)
		}
		if n != 3 || len(f.assigned) != 3 {
			t.Errorf("got n=%d assigned=%v", n, f.assigned)
		}
	})

	t.Run("dry run changes nothing", func(t *testing.T) {
		f := &fakeAssigner{missing: []int64{3, 5}}
		n, err := populateCodes(f, true)
		if err != nil {
			t.Fatalf("populateCodes: %v", err)
		}
		if n != 2 || len(f.assigned) != 0 {
			t.Errorf("got n=%d assigned=%v", n, f.assigned)
		}
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		f := &fakeAssigner{missing: []int64{3, 5, 8}, failOn: 5}
		n, err := populateCodes(f, false)
		if err == nil {
			t.Fatal("expected an error")
		}
		if n != 1 {
			t.Errorf("assigned before failure: got %d, want 1", n)
		}
	})
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"serve", "migrate", "populate-codes"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
