// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging renders small WebP images with libvips: admin upload
// previews and catalogue covers taken from the first page of a PDF.
// Output is never wider than the source.
package imaging

import (
	"fmt"
	"log/slog"

	"github.com/davidbyttow/govips/v2/vips"
)

// Variant describes a target size.
type Variant struct {
	Name    string
	Width   int // target width in pixels
	Quality int // WebP quality 1-100
}

var (
	// PreviewVariant is used for transient upload previews in the editor.
	PreviewVariant = Variant{Name: "preview", Width: 480, Quality: 70}
	// CoverVariant is used for catalogue covers rendered from a PDF.
	CoverVariant = Variant{Name: "cover", Width: 800, Quality: 80}
)

// ContentType is the type of every image this package produces.
const ContentType = "image/webp"

// ProcessedImage is one rendered image.
type ProcessedImage struct {
	Name        string
	Width       int
	Height      int
	Data        []byte
	ContentType string
}

// Startup initialises the libvips library. Call once at application start.
// concurrency controls the number of libvips worker threads (0 = auto).
func Startup(concurrency int) {
	cfg := &vips.Config{
		ConcurrencyLevel: concurrency,
		MaxCacheSize:     50,
		MaxCacheMem:      32 * 1024 * 1024,
	}
	vips.LoggingSettings(nil, vips.LogLevelWarning)
	vips.Startup(cfg)
	slog.Info("libvips started", "version", vips.Version)
}

// Shutdown releases libvips resources. Call at application shutdown.
func Shutdown() {
	vips.Shutdown()
}

// Thumbnail downscales an uploaded image to the variant width, honouring
// EXIF orientation and stripping metadata.
func Thumbnail(src []byte, v Variant) (ProcessedImage, error) {
	probe, err := vips.NewImageFromBuffer(src)
	if err != nil {
		return ProcessedImage{}, fmt.Errorf("imaging: probe failed: %w", err)
	}
	width := min(probe.Width(), v.Width)
	probe.Close()

	img, err := vips.NewThumbnailFromBuffer(src, width, 0, vips.InterestingNone)
	if err != nil {
		return ProcessedImage{}, fmt.Errorf("imaging: thumbnail %s (%dpx): %w", v.Name, width, err)
	}
	defer img.Close()

	if err := img.AutoRotate(); err != nil {
		return ProcessedImage{}, fmt.Errorf("imaging: autorotate %s: %w", v.Name, err)
	}
	return export(img, v)
}

// PDFCover renders the first page of a PDF at the variant width.
func PDFCover(pdf []byte, v Variant) (ProcessedImage, error) {
	params := vips.NewImportParams()
	params.Page.Set(0)
	params.NumPages.Set(1)

	img, err := vips.LoadImageFromBuffer(pdf, params)
	if err != nil {
		return ProcessedImage{}, fmt.Errorf("imaging: load pdf: %w", err)
	}
	defer img.Close()

	if img.Width() > v.Width {
		if err := img.Thumbnail(v.Width, 0, vips.InterestingNone); err != nil {
			return ProcessedImage{}, fmt.Errorf("imaging: scale %s: %w", v.Name, err)
		}
	}
	// PDF pages may carry transparency; flatten onto white.
	if img.HasAlpha() {
		if err := img.Flatten(&vips.Color{R: 255, G: 255, B: 255}); err != nil {
			return ProcessedImage{}, fmt.Errorf("imaging: flatten %s: %w", v.Name, err)
		}
	}
	return export(img, v)
}

// PDFThumbnailer adapts PDFCover to the catalogue editor's hook signature.
func PDFThumbnailer(pdf []byte) ([]byte, string, error) {
	out, err := PDFCover(pdf, CoverVariant)
	if err != nil {
		return nil, "", err
	}
	return out.Data, out.ContentType, nil
}

func export(img *vips.ImageRef, v Variant) (ProcessedImage, error) {
	params := vips.NewWebpExportParams()
	params.Quality = v.Quality
	params.Lossless = false
	params.StripMetadata = true

	buf, meta, err := img.ExportWebp(params)
	if err != nil {
		return ProcessedImage{}, fmt.Errorf("imaging: export %s: %w", v.Name, err)
	}
	return ProcessedImage{
		Name:        v.Name,
		Width:       meta.Width,
		Height:      meta.Height,
		Data:        buf,
		ContentType: ContentType,
	}, nil
}
