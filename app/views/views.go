// Package views holds the HTML templates of the blog.
package views

import "embed"

//go:embed *.html post/*.html
var FS embed.FS
