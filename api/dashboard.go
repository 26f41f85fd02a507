package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/stenstromen/healthviz/dataset"
	"github.com/stenstromen/healthviz/model"
	"github.com/stenstromen/healthviz/plot"
)

const previewRows = 5

// loadSelected resolves and parses the file named by the "file" query value.
// It writes the error response itself and returns nil in that case.
func (s *Server) loadSelected(w http.ResponseWriter, r *http.Request, name string) *dataset.Table {
	path, err := dataset.Resolve(s.dataDir, name)
	if err != nil {
		if errors.Is(err, dataset.ErrNotListed) {
			http.Error(w, "Dataset not found", http.StatusNotFound)
			return nil
		}
		s.log.Error(r.Context(), "failed to list datasets", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil
	}

	table, err := dataset.LoadTable(path)
	if err != nil {
		s.log.Error(r.Context(), "failed to load dataset", "file", name, "error", err)
		http.Error(w, fmt.Sprintf("Failed to load dataset: %v", err), http.StatusInternalServerError)
		return nil
	}
	return table
}

func plotRequest(r *http.Request, table *dataset.Table) (model.PlotRequest, string, bool) {
	q := r.URL.Query()
	req := model.PlotRequest{XColumn: q.Get("x"), YColumn: q.Get("y")}
	if req.XColumn == "" && len(table.Columns) > 0 {
		req.XColumn = table.Columns[0]
	}
	if req.YColumn == "" && len(table.Columns) > 0 {
		req.YColumn = table.Columns[0]
	}

	kind := q.Get("kind")
	if kind == "" {
		kind = model.LinePlot.String()
	}
	k, ok := model.ParsePlotKind(kind)
	req.Kind = k
	return req, kind, ok
}

// generate runs the dispatcher and hides the cause behind the generic message.
func (s *Server) generate(r *http.Request, table *dataset.Table, req model.PlotRequest, known bool) (*plot.Figure, bool) {
	if !known {
		s.log.Debug(r.Context(), "plot failed", "file", table.Name, "error", "unknown plot kind")
		return nil, false
	}
	fig, err := plot.GenerateRequest(table, req)
	if err != nil {
		s.log.Debug(r.Context(), "plot failed", "file", table.Name, "kind", req.Kind.String(), "x", req.XColumn, "y", req.YColumn, "error", err)
		return nil, false
	}
	return fig, true
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request, state model.SessionState) {
	files, err := dataset.ListFiles(s.dataDir)
	if err != nil {
		s.log.Error(r.Context(), "failed to list datasets", "dir", s.dataDir, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	errs, msgs := s.sessions.PopFlashes(w, r)
	data := pageData{
		Title:    appTitle,
		Errors:   errs,
		Messages: msgs,
		Username: state.Username,
		Files:    files,
		File:     r.URL.Query().Get("file"),
	}

	if data.File == "" {
		s.render(w, r, http.StatusOK, "dashboard.html", data)
		return
	}

	table := s.loadSelected(w, r, data.File)
	if table == nil {
		return
	}

	req, kind, known := plotRequest(r, table)
	data.Table = table
	data.Head = table.Head(previewRows)
	data.Axes = append(append([]string{}, table.Columns...), model.None)
	for _, k := range model.PlotKinds {
		data.Kinds = append(data.Kinds, k.String())
	}
	data.X, data.Y, data.Kind = req.XColumn, req.YColumn, kind

	if r.URL.Query().Get("generate") != "" {
		if fig, ok := s.generate(r, table, req, known); ok {
			data.Figure = fig
			data.FigureSrc = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(fig.PNG))
		} else {
			data.PlotError = plot.Message
		}
	}

	s.render(w, r, http.StatusOK, "dashboard.html", data)
}

func (s *Server) plotImage(w http.ResponseWriter, r *http.Request, state model.SessionState) {
	table := s.loadSelected(w, r, r.URL.Query().Get("file"))
	if table == nil {
		return
	}

	req, _, known := plotRequest(r, table)
	fig, ok := s.generate(r, table, req, known)
	if !ok {
		http.Error(w, plot.Message, http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(fig.PNG)
}
