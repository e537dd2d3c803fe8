package statics

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed www/*
var www embed.FS

// ServeStatics serves the embedded browser, or staticsDir when it is set.
func ServeStatics(staticsDir string) http.HandlerFunc {
	if staticsDir != "" {
		return http.FileServer(http.Dir(staticsDir)).ServeHTTP
	}
	sub, err := fs.Sub(www, "www")
	if err != nil {
		panic(err) // www is embedded, it always exists
	}
	return http.FileServer(http.FS(sub)).ServeHTTP
}
