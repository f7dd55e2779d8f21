// Package web holds the server-rendered pages: embedded templates, static
// assets and the echo renderer that executes them.
package web

import "embed"

//go:embed templates
var templateFS embed.FS

// StaticFS serves /static.
//
//go:embed static
var StaticFS embed.FS
