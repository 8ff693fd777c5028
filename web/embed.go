// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package web provides embedded static assets (CSS, JS) for the admin
// back office and the public site, served at /static/.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree. Release builds copy the
// htmx bundle into static/js/vendor/; development pages load it from the
// CDN instead.
//
//go:embed all:static
var StaticFS embed.FS
