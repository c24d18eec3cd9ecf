// Package assets embeds the web viewer served by cmd/server.
// index.html is generated from index.html.tpl by cmd/minify.
package assets

import _ "embed"

// Index is the minified single-page viewer.
//
//go:embed index.html
var Index []byte

// Favicon is the site icon.
//
//go:embed favicon.svg
var Favicon []byte
