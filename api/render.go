package api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/stenstromen/healthviz/dataset"
	"github.com/stenstromen/healthviz/plot"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type pageData struct {
	Title    string
	Errors   []string
	Messages []string

	TOTPSecret string
	OTPAuthURL string

	Username  string
	Files     []string
	File      string
	Table     *dataset.Table
	Head      [][]dataset.Value
	Axes      []string
	Kinds     []string
	X, Y      string
	Kind      string
	Figure    *plot.Figure
	FigureSrc template.URL
	PlotError string
}

// render executes the named page into a buffer first so template failures
// still produce a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error(r.Context(), "failed to render page", "page", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
