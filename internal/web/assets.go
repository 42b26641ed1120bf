package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html templates/partials/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// LoadTemplates は埋め込みテンプレートを読み込みます。
// テンプレート名はファイル名（例: "home.html"）です。
func LoadTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html", "templates/partials/*.html")
}

// StaticFS は /static 配下で配信する静的ファイルを返します。
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
