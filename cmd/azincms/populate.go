// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"azincms/internal/database"
	"azincms/internal/store"
)

// codeAssigner is a store whose rows can be given codes after the fact.
type codeAssigner interface {
	MissingCodes() ([]int64, error)
	AssignCode(id int64) (string, error)
}

func newPopulateCodesCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "populate-codes",
		Short: "Assign codes to articles and albums saved without one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			db, err := database.Connect(cfg.DSN())
			if err != nil {
				return err
			}
			defer db.Close()

			targets := []struct {
				name  string
				store codeAssigner
			}{
				{"articles", store.NewArticleStore(db, nil)},
				{"albums", store.NewAlbumStore(db, nil)},
			}
			for _, t := range targets {
				n, err := populateCodes(t.store, dryRun)
				if err != nil {
					return fmt.Errorf("populate %s: %w", t.name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d codes assigned\n", t.name, n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only count rows without a code")
	return cmd
}

// populateCodes gives every row without a code a fresh one. It returns how
// many rows were (or, in a dry run, would be) updated.
func populateCodes(s codeAssigner, dryRun bool) (int, error) {
	ids, err := s.MissingCodes()
	if err != nil {
		return 0, err
	}
	if dryRun {
		return len(ids), nil
	}
	for i, id := range ids {
		c, err := s.AssignCode(id)
		if err != nil {
			return i, fmt.Errorf("id %d: %w", id, err)
		}
		slog.Debug("code assigned", "id", id, "code", c)
	}
	return len(ids), nil
}
