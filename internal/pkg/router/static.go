package router

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// staticHandler serves files from dir for GET and HEAD requests and hands
// everything else, including missing files, to fallback.
func staticHandler(dir string, fallback http.Handler) http.Handler {
	fs := http.FileServer(http.Dir(dir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			fallback.ServeHTTP(w, r)
			return
		}

		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if _, err := os.Stat(name); err != nil {
			fallback.ServeHTTP(w, r)
			return
		}

		fs.ServeHTTP(w, r)
	})
}
