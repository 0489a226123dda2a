// Package assets embeds the viewer page served at the root path.
package assets

import _ "embed"

// Index is the page template; {{.CSS}} and {{.JS}} are filled at startup.
//
//go:embed index.html.tpl
var Index string

//go:embed style.css
var Style string

//go:embed script.js
var Script string
