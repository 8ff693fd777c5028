// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Project is a portfolio entry. Details is rich HTML.
type Project struct {
	ID          string     `json:"_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Images      StringSet  `json:"images,omitempty"`
	Client      string     `json:"client,omitempty"`
	Year        FlexString `json:"year,omitempty"`
	Details     string     `json:"details,omitempty"`
}

// RecordID returns the server-assigned identifier.
func (p Project) RecordID() string { return p.ID }
