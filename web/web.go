// Package web embeds the browser client served under /app/.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var staticFiles embed.FS

// Static returns the client assets rooted at the static directory
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// "static" is embedded at build time, so Sub cannot fail
		panic(err)
	}
	return sub
}
