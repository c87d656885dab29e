package views

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/template/html/v2"

	"github.com/example/unihome/internal/services"
)

//go:embed templates
var files embed.FS

// New builds the template engine over the embedded templates. With reload set
// the templates are parsed again on every render.
func New(reload bool) *html.Engine {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic(err)
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.Reload(reload)
	engine.AddFuncMap(Funcs())
	return engine
}

// Funcs are the helpers available to every template.
func Funcs() map[string]interface{} {
	return map[string]interface{}{
		"asset": Asset,
		"price": services.FormatPrice,
		"num":   Num,
	}
}

// Asset turns a stored relative path into a URL.
func Asset(path string) string {
	if path == "" || strings.HasPrefix(path, "/") || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return "/" + path
}

// Num prints optional numbers, or an empty string when unset.
func Num(v interface{}) string {
	switch n := v.(type) {
	case *int:
		if n == nil {
			return ""
		}
		return strconv.Itoa(*n)
	case *float64:
		if n == nil {
			return ""
		}
		return strconv.FormatFloat(*n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
