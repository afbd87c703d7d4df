// Package web holds the single-page UI served at "/".
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var static embed.FS

// FS returns the UI assets rooted at the static directory.
func FS() http.FileSystem {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		// static is compiled in; Sub only fails on a malformed path.
		panic(err)
	}
	return http.FS(sub)
}
