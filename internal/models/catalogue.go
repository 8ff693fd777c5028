// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// CatalogueCategory extends the product categories with a catch-all.
type CatalogueCategory string

const CatalogueCategoryGeneral CatalogueCategory = "General"

// CatalogueCategories lists the selectable catalogue categories.
var CatalogueCategories = append(append([]string{}, ProductCategories...), string(CatalogueCategoryGeneral))

// PDFContentType is the only MIME type accepted for catalogue files.
const PDFContentType = "application/pdf"

// Catalogue is a downloadable PDF brochure. Its thumbnail is derived from
// the first page of the PDF when it is uploaded.
type Catalogue struct {
	ID          string            `json:"_id,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Category    CatalogueCategory `json:"category"`
	PDF         string            `json:"pdf"`
	Thumbnail   string            `json:"thumbnail,omitempty"`
	CreatedAt   *time.Time        `json:"createdAt,omitempty"`
}

// RecordID returns the server-assigned identifier.
func (c Catalogue) RecordID() string { return c.ID }
