// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sanitize

import (
	"bytes"
	"html/template"
	"log/slog"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// md converts rich text fields. Editors may write Markdown, while records
// saved by the rich text editor hold HTML; raw HTML passes through and is
// filtered by the allow-list afterwards.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
		html.WithHardWraps(),
	),
)

// Rich renders a rich text field (blog content, project details) as
// Markdown and returns the allow-listed result. If conversion fails the
// source is sanitized as plain HTML.
func Rich(raw string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(raw), &buf); err != nil {
		slog.Warn("markdown conversion failed", "error", err)
		return HTML(raw)
	}
	return template.HTML(policy.Sanitize(buf.String()))
}
