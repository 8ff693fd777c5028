// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// BlogCategory groups blog posts on the public site.
type BlogCategory string

const (
	BlogCategoryUpdates BlogCategory = "Updates"
	BlogCategoryNews    BlogCategory = "News"
	BlogCategoryTips    BlogCategory = "Tips"
	BlogCategoryGeneral BlogCategory = "General"
)

// BlogCategories lists the selectable blog categories.
var BlogCategories = []string{
	string(BlogCategoryUpdates),
	string(BlogCategoryNews),
	string(BlogCategoryTips),
	string(BlogCategoryGeneral),
}

// Blog is an article. Content is rich HTML and must be sanitised before
// it reaches a template.
type Blog struct {
	ID        string       `json:"_id,omitempty"`
	Title     string       `json:"title"`
	Excerpt   string       `json:"excerpt"`
	Content   string       `json:"content"`
	Category  BlogCategory `json:"category"`
	Author    string       `json:"author"`
	Thumbnail string       `json:"thumbnail,omitempty"`
	CreatedAt *time.Time   `json:"createdAt,omitempty"`
}

// RecordID returns the server-assigned identifier.
func (b Blog) RecordID() string { return b.ID }
