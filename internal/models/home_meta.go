// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// HomeMeta holds the homepage title and description. At most one exists.
type HomeMeta struct {
	ID          string `json:"_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// RecordID returns the server-assigned identifier.
func (h HomeMeta) RecordID() string { return h.ID }
