// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package sanitize is the boundary between rich HTML stored by the content
// API (blog content, project details) and the pages that render it. Only
// allow-listed elements and attributes survive.
package sanitize

import (
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy is built once; bluemonday policies are safe for concurrent use
// after construction.
var (
	policy = newPolicy()
	strict = bluemonday.StrictPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("style").OnElements("span", "p")
	p.AllowStyles("text-align").MatchingEnum("left", "right", "center", "justify").Globally()
	p.AllowStyles("color", "background-color").Globally()
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.RequireNoReferrerOnFullyQualifiedLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// HTML returns the allow-listed subset of raw as trusted template HTML.
func HTML(raw string) template.HTML {
	return template.HTML(policy.Sanitize(raw))
}

// Text strips every tag from raw and collapses whitespace. Used for meta
// descriptions and list excerpts built from rich content.
func Text(raw string) string {
	stripped := strict.Sanitize(raw)
	return strings.Join(strings.Fields(stripped), " ")
}

// Excerpt returns Text(raw) cut to at most n runes on a word boundary.
func Excerpt(raw string, n int) string {
	text := []rune(Text(raw))
	if len(text) <= n {
		return string(text)
	}
	cut := string(text[:n])
	if i := strings.LastIndexByte(cut, ' '); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
