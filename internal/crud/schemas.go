// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package crud

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"atelier/internal/models"
)

var imageTypes = []string{"image/*"}

// PDFThumbnailer renders the first page of a PDF as an image.
type PDFThumbnailer func(pdf []byte) (data []byte, contentType string, err error)

// ProductSchema configures the products section.
func ProductSchema() *Schema[models.Product] {
	return &Schema[models.Product]{
		Name: "products", Label: "Product", Plural: "Products",
		ListPath: "/products", CreatePath: "/products", ItemPath: "/products",
		Prepend: true,
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Column: true},
			{Name: "description", Label: "Description", Kind: KindTextArea, Required: true},
			{Name: "category", Label: "Category", Kind: KindSelect, Required: true, Column: true, Options: models.ProductCategories},
			{Name: "size", Label: "Sizes", Kind: KindMultiSelect, Column: true, OptionSet: models.OptionKindSize},
			{Name: "finish", Label: "Finishes", Kind: KindMultiSelect, Column: true, OptionSet: models.OptionKindFinish},
		},
		Files: []FileField{
			{Name: "thumbnail", Label: "Thumbnail", Accept: imageTypes},
			{Name: "images", Label: "Images", Multiple: true, Accept: imageTypes},
		},
	}
}

// CatalogueSchema configures the catalogues section. When thumb is set
// and no thumbnail was uploaded, one is rendered from the PDF.
func CatalogueSchema(thumb PDFThumbnailer) *Schema[models.Catalogue] {
	s := &Schema[models.Catalogue]{
		Name: "catalogues", Label: "Catalogue", Plural: "Catalogues",
		ListPath: "/catalogues", CreatePath: "/catalogues/create", ItemPath: "/catalogues",
		Envelope: "catalogue",
		Prepend:  true,
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Column: true},
			{Name: "description", Label: "Description", Kind: KindTextArea},
			{Name: "category", Label: "Category", Kind: KindSelect, Required: true, Column: true, Options: models.CatalogueCategories},
		},
		Files: []FileField{
			{Name: "pdf", Label: "PDF", RequiredOnCreate: true, Accept: []string{models.PDFContentType}, Sniff: true},
			{Name: "thumbnail", Label: "Thumbnail", Accept: imageTypes},
		},
	}
	if thumb != nil {
		s.Prepare = func(_ context.Context, f *Form) error {
			pdfs := f.Files["pdf"]
			if len(pdfs) == 0 || len(f.Files["thumbnail"]) > 0 {
				return nil
			}
			data, ct, err := thumb(pdfs[0].Data)
			if err != nil {
				// The catalogue is still usable without a cover.
				slog.Warn("catalogue thumbnail failed", "file", pdfs[0].Filename, "error", err)
				return nil
			}
			base := strings.TrimSuffix(pdfs[0].Filename, path.Ext(pdfs[0].Filename))
			f.AddFile("thumbnail", Upload{Filename: base + extFor(ct), ContentType: ct, Data: data})
			return nil
		}
	}
	return s
}

// BlogSchema configures the blog section.
func BlogSchema() *Schema[models.Blog] {
	return &Schema[models.Blog]{
		Name: "blogs", Label: "Blog post", Plural: "Blog posts",
		ListPath: "/blogs", CreatePath: "/blogs/create", ItemPath: "/blogs",
		Prepend: true,
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Column: true},
			{Name: "excerpt", Label: "Excerpt", Kind: KindTextArea, Required: true},
			{Name: "content", Label: "Content", Kind: KindRichText, Required: true},
			{Name: "category", Label: "Category", Kind: KindSelect, Required: true, Column: true, Options: models.BlogCategories},
			{Name: "author", Label: "Author", Kind: KindText, Required: true, Column: true},
			{Name: "createdAt", Label: "Published", Kind: KindDate, Column: true},
		},
		Files: []FileField{
			{Name: "thumbnail", Label: "Thumbnail", Accept: imageTypes},
		},
	}
}

// ProjectSchema configures the projects section.
func ProjectSchema() *Schema[models.Project] {
	return &Schema[models.Project]{
		Name: "projects", Label: "Project", Plural: "Projects",
		ListPath: "/projects", CreatePath: "/projects/create", ItemPath: "/projects",
		Envelope: "project",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Column: true},
			{Name: "description", Label: "Description", Kind: KindTextArea, Required: true},
			{Name: "category", Label: "Category", Kind: KindText, Required: true, Column: true},
			{Name: "client", Label: "Client", Kind: KindText, Column: true},
			{Name: "year", Label: "Year", Kind: KindText, Column: true},
			{Name: "details", Label: "Details", Kind: KindRichText},
		},
		Files: []FileField{
			{Name: "thumbnail", Label: "Thumbnail", Accept: imageTypes},
			{Name: "images", Label: "Images", Multiple: true, Accept: imageTypes},
		},
	}
}

// ContactFormSchema configures the read-only contact submissions inbox.
func ContactFormSchema() *Schema[models.ContactForm] {
	return &Schema[models.ContactForm]{
		Name: "contact-forms", Label: "Message", Plural: "Messages",
		ListPath: "/contact-forms", ItemPath: "/contact-forms",
		ReadOnly: true,
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Column: true},
			{Name: "email", Label: "Email", Kind: KindEmail, Column: true},
			{Name: "message", Label: "Message", Kind: KindTextArea, Column: true},
			{Name: "createdAt", Label: "Received", Kind: KindDate, Column: true},
		},
	}
}

// HomeMetaSchema configures the singleton home page metadata.
func HomeMetaSchema() *Schema[models.HomeMeta] {
	return &Schema[models.HomeMeta]{
		Name: "home-meta", Label: "Home metadata", Plural: "Home metadata",
		ListPath: "/home-meta", CreatePath: "/home-meta", ItemPath: "/home-meta",
		Singleton: true,
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Column: true},
			{Name: "description", Label: "Description", Kind: KindTextArea, Required: true, Column: true},
		},
	}
}

func extFor(contentType string) string {
	switch contentType {
	case "image/webp":
		return ".webp"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	}
	return ""
}
