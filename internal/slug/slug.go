// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug builds the readable tail of share links such as
// /products/{id}/{slug}. Slugs are cosmetic: routes resolve by ID.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// whitespace runs become a single hyphen.
	whitespace = regexp.MustCompile(`\s+`)
)

// dimension separators in tile sizes ("600×1200") read as "x".
var separators = strings.NewReplacer("×", "x", "&", " and ")

// Generate creates a URL-friendly slug from the given string.
// Example: "Carrara Matte 600×1200" → "carrara-matte-600x1200"
func Generate(s string) string {
	result := separators.Replace(strings.ToLower(strings.TrimSpace(s)))
	result = fold(result)
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = whitespace.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// fold strips diacritics ("é" → "e").
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
