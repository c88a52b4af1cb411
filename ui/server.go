// Package ui serves the Docsy playground: a page to edit a document and an
// API that parses, formats and resolves it.
package ui

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/docsy/parser"
)

//go:embed static templates
var embeddedFS embed.FS

var log = commonlog.GetLogger("docsy.ui")

const maxSourceSize = 1 << 20

type Options struct {
	Parser  []parser.Option
	Globals map[string]any
	Example string
	// Assets names a directory whose static and templates subdirectories
	// override the embedded files.
	Assets string
}

type Server struct {
	opts       Options
	staticFS   fs.FS
	templateFS fs.FS
	funcMap    template.FuncMap
	mux        *http.ServeMux
}

func NewServer(opts Options) (*Server, error) {
	staticFS := assets(opts.Assets, "static")
	templateFS := assets(opts.Assets, "templates")

	funcMap := template.FuncMap{
		"severityClass": func(severity string) string {
			return "diag-" + severity
		},
		"json": func(v any) (string, error) {
			data, err := json.MarshalIndent(v, "", "  ")
			return string(data), err
		},
	}

	if _, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "*.html"); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		opts:       opts,
		staticFS:   staticFS,
		templateFS: templateFS,
		funcMap:    funcMap,
		mux:        http.NewServeMux(),
	}

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.mux.HandleFunc("POST /api/parse", s.handleAPIParse)
	s.mux.HandleFunc("POST /parse", s.handleParse)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// render parses the templates on every call so edits under the assets
// directory show up without a restart.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, err := template.New("").Funcs(s.funcMap).ParseFS(s.templateFS, "*.html")
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Errorf("render %s: %s", name, err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	req := Request{Source: s.opts.Example, Mode: ModeDocument}
	data := struct {
		Request Request
		Result  *Response
	}{Request: req}
	if req.Source != "" {
		data.Result = s.analyze(req)
	}
	s.render(w, "index.html", data)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSourceSize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data: "+err.Error(), http.StatusBadRequest)
		return
	}
	req := Request{
		Source: r.FormValue("source"),
		Mode:   Mode(r.FormValue("mode")),
	}
	if globals := r.FormValue("globals"); globals != "" {
		if err := json.Unmarshal([]byte(globals), &req.Globals); err != nil {
			http.Error(w, "invalid globals: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	result := s.analyze(req)

	if r.Header.Get("Accept") == "application/json" {
		writeJSON(w, http.StatusOK, result)
		return
	}
	s.render(w, "_result.html", result)
}

func (s *Server) handleAPIParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSourceSize)
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.analyze(req))
}

func (s *Server) analyze(req Request) *Response {
	if req.Globals == nil {
		req.Globals = s.opts.Globals
	}
	return Analyze(req, s.opts.Parser...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("encode response: %s", err)
	}
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// assets returns the embedded subdirectory name, overlaid by the same
// subdirectory of dir when dir is set.
func assets(dir, name string) fs.FS {
	embedded := mustSub(embeddedFS, name)
	if dir == "" {
		return embedded
	}
	return layers{os.DirFS(filepath.Join(dir, name)), embedded}
}

// layers opens a file from the first layer that has it.
type layers []fs.FS

func (l layers) Open(name string) (fs.File, error) {
	var err error
	for _, layer := range l {
		var f fs.File
		if f, err = layer.Open(name); err == nil {
			return f, nil
		}
	}
	return nil, err
}

func (l layers) ReadDir(name string) ([]fs.DirEntry, error) {
	seen := make(map[string]bool)
	var entries []fs.DirEntry
	found := false
	for _, layer := range l {
		list, err := fs.ReadDir(layer, name)
		if err != nil {
			continue
		}
		found = true
		for _, e := range list {
			if !seen[e.Name()] {
				seen[e.Name()] = true
				entries = append(entries, e)
			}
		}
	}
	if !found {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}
