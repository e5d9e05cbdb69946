// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"azincms/internal/models"
)

// setCategories replaces the category links of one owner row. joinTable and
// ownerCol are package constants.
func setCategories(tx *sql.Tx, joinTable, ownerCol string, ownerID int64, categoryIDs []int64) error {
	if _, err := tx.Exec(`DELETE FROM `+joinTable+` WHERE `+ownerCol+` = $1`, ownerID); err != nil {
		return fmt.Errorf("clear %s: %w", joinTable, err)
	}
	if len(categoryIDs) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`INSERT INTO ` + joinTable + ` (` + ownerCol + `, category_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare %s: %w", joinTable, err)
	}
	defer stmt.Close()

	for _, cid := range categoryIDs {
		if _, err := stmt.Exec(ownerID, cid); err != nil {
			return fmt.Errorf("link category %d: %w", cid, err)
		}
	}
	return nil
}

// categoriesFor loads the categories of many owner rows in one query,
// keyed by owner id and ordered by name.
func categoriesFor(db *sql.DB, joinTable, ownerCol string, ownerIDs []int64) (map[int64][]models.Category, error) {
	rows, err := db.Query(`
		SELECT j.`+ownerCol+`, `+categoryColumns+`
		FROM `+joinTable+` j
		JOIN categories c ON c.id = j.category_id
		WHERE j.`+ownerCol+` = ANY($1)
		ORDER BY c.name
	`, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", joinTable, err)
	}
	defer rows.Close()

	result := make(map[int64][]models.Category)
	for rows.Next() {
		var ownerID int64
		var c models.Category
		if err := rows.Scan(&ownerID, &c.ID, &c.Name, &c.Slug, &c.Description,
			&c.SEOTitle, &c.SEODescription, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", joinTable, err)
		}
		result[ownerID] = append(result[ownerID], c)
	}
	return result, rows.Err()
}
