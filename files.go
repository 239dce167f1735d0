package portal

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/django/v3"
)

//go:embed views
var viewsFS embed.FS

//go:embed public
var publicFS embed.FS

// GetViewsFS returns the page templates rooted at views/
func GetViewsFS() fs.FS {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	return sub
}

// GetPublicFS returns the static assets rooted at public/
func GetPublicFS() fs.FS {
	sub, err := fs.Sub(publicFS, "public")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewViewEngine builds the django engine over the embedded templates.
// reload re-parses templates on every render.
func NewViewEngine(reload bool) *django.Engine {
	engine := django.NewFileSystem(http.FS(GetViewsFS()), ".html")
	engine.Reload(reload)
	return engine
}
