// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// OptionKind names a user-extensible option set.
type OptionKind string

const (
	OptionKindSize   OptionKind = "size"
	OptionKindFinish OptionKind = "finish"
)

// Valid reports whether k is a known option set.
func (k OptionKind) Valid() bool {
	return k == OptionKindSize || k == OptionKindFinish
}

// Defaults returns the built-in values for the option set.
func (k OptionKind) Defaults() []string {
	switch k {
	case OptionKindSize:
		return DefaultSizes
	case OptionKindFinish:
		return DefaultFinishes
	}
	return nil
}

// OptionValue is a custom option an admin added to a set. It is stored
// in PostgreSQL so it survives restarts and is shared by all admins.
type OptionValue struct {
	ID        uuid.UUID  `json:"id"`
	Kind      OptionKind `json:"kind"`
	Value     string     `json:"value"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
