// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the records exchanged with the remote content API
// and the few tables the server owns locally.
package models

import "time"

// ProductCategory is the tile family a product belongs to.
type ProductCategory string

const (
	ProductCategoryGVT    ProductCategory = "GVT"
	ProductCategorySubway ProductCategory = "Subway"
	ProductCategoryWall   ProductCategory = "Wall"
	ProductCategoryWood   ProductCategory = "Wood"
)

// ProductCategories lists the selectable product categories in display order.
var ProductCategories = []string{
	string(ProductCategoryGVT),
	string(ProductCategorySubway),
	string(ProductCategoryWall),
	string(ProductCategoryWood),
}

// DefaultSizes is the built-in size option set. Admins may extend it;
// additions are persisted as OptionValue rows.
var DefaultSizes = []string{
	"600×600",
	"600×1200",
	"800×800",
	"800×1600",
	"300×600",
	"200×1200",
	"75×300",
}

// DefaultFinishes is the built-in finish option set.
var DefaultFinishes = []string{
	"Matte",
	"Glossy",
	"Satin",
	"Rustic",
	"Polished",
	"Carving",
}

// Product is a tile in the catalogue.
type Product struct {
	ID          string          `json:"_id,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    ProductCategory `json:"category"`
	Size        StringSet       `json:"size,omitempty"`
	Finish      StringSet       `json:"finish,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	Images      StringSet       `json:"images,omitempty"`
	CreatedAt   *time.Time      `json:"createdAt,omitempty"`
}

// RecordID returns the server-assigned identifier.
func (p Product) RecordID() string { return p.ID }

// CoverImage returns the thumbnail, falling back to the first gallery image.
func (p Product) CoverImage() string {
	if p.Thumbnail != "" {
		return p.Thumbnail
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}
