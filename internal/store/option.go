// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"atelier/internal/models"
)

// OptionStore persists the custom size and finish values admins add in the
// product editor. They are shared by every admin and survive restarts.
type OptionStore struct {
	db *sql.DB
}

// NewOptionStore creates a new OptionStore.
func NewOptionStore(db *sql.DB) *OptionStore {
	return &OptionStore{db: db}
}

// List returns the selectable values of a set: built-in defaults first,
// then custom values in the order they were added, without duplicates.
func (s *OptionStore) List(kind models.OptionKind) ([]string, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("list options: unknown kind %q", kind)
	}
	custom, err := s.Custom(kind)
	if err != nil {
		return nil, err
	}
	values := append([]string{}, kind.Defaults()...)
	for _, o := range custom {
		values = append(values, o.Value)
	}
	return models.NormalizeSet(values), nil
}

// Custom returns only the stored values of a set.
func (s *OptionStore) Custom(kind models.OptionKind) ([]models.OptionValue, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, value, created_by, created_at
		FROM option_values WHERE kind = $1
		ORDER BY created_at ASC, value ASC
	`, kind)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	defer rows.Close()

	var out []models.OptionValue
	for rows.Next() {
		var o models.OptionValue
		if err := rows.Scan(&o.ID, &o.Kind, &o.Value, &o.CreatedBy, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Add stores a custom value. Adding a default or an existing value is a
// no-op; added reports whether a row was inserted.
func (s *OptionStore) Add(kind models.OptionKind, value string, createdBy *uuid.UUID) (added bool, err error) {
	if !kind.Valid() {
		return false, fmt.Errorf("add option: unknown kind %q", kind)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return false, fmt.Errorf("add option: empty value")
	}
	for _, d := range kind.Defaults() {
		if d == value {
			return false, nil
		}
	}

	res, err := s.db.Exec(`
		INSERT INTO option_values (kind, value, created_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, value) DO NOTHING
	`, kind, value, createdBy)
	if err != nil {
		return false, fmt.Errorf("add option: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("add option: %w", err)
	}
	return n > 0, nil
}

// AddAll stores every value of a submitted selection that is not yet
// known. It returns the values that were new.
func (s *OptionStore) AddAll(kind models.OptionKind, values []string, createdBy *uuid.UUID) ([]string, error) {
	var added []string
	for _, v := range models.NormalizeSet(values) {
		ok, err := s.Add(kind, v, createdBy)
		if err != nil {
			return added, err
		}
		if ok {
			added = append(added, v)
		}
	}
	return added, nil
}

// Remove deletes a custom value. Defaults cannot be removed.
func (s *OptionStore) Remove(kind models.OptionKind, value string) error {
	_, err := s.db.Exec(`DELETE FROM option_values WHERE kind = $1 AND value = $2`, kind, value)
	if err != nil {
		return fmt.Errorf("remove option: %w", err)
	}
	return nil
}
