package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	s, err := NewServer(opts)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func postJSON(t *testing.T, s *Server, body string) *Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var res Response
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	return &res
}

func TestAPIParse(t *testing.T) {
	s := newTestServer(t, Options{})

	res := postJSON(t, s, `{"source": "Hello {name}", "globals": {"name": "Ada"}}`)
	if !res.OK || res.Value != "Hello Ada" || res.Serialized != "Hello {name}" {
		t.Errorf("response = %+v", res)
	}
	if res.AST == nil || res.AST.Kind != "Document" {
		t.Errorf("ast = %+v", res.AST)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("diagnostics = %+v", res.Diagnostics)
	}

	res = postJSON(t, s, `{"source": "{a: 'x'}", "mode": "expression"}`)
	if !res.OK || res.Formatted != `{a: 'x'}` {
		t.Errorf("response = %+v", res)
	}

	res = postJSON(t, s, `{"source": "<|a>\nhi"}`)
	if res.OK || len(res.Diagnostics) != 1 || res.Diagnostics[0].Severity != "error" {
		t.Fatalf("response = %+v", res)
	}
	if res.Diagnostics[0].Line != 2 || res.Diagnostics[0].Snippet == "" {
		t.Errorf("diagnostic = %+v", res.Diagnostics[0])
	}

	res = postJSON(t, s, `{"source": "{who}"}`)
	if !res.OK || len(res.Diagnostics) != 1 || res.Diagnostics[0].Severity != "warning" {
		t.Errorf("response = %+v", res)
	}
}

func TestAPIParseBadRequest(t *testing.T) {
	s := newTestServer(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestIndexAndForm(t *testing.T) {
	s := newTestServer(t, Options{Example: "<|Card>hi</>", Globals: map[string]any{"Card": "Card"}})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Docsy playground", "&lt;|Card&gt;hi&lt;/&gt;", "Formatted"} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}

	form := url.Values{"source": {"x {y}"}, "mode": {"document"}, "globals": {`{"y": "z"}`}}
	req := httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "&#34;x z&#34;") {
		t.Errorf("form result %d:\n%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("static status = %d", rec.Code)
	}
}

func TestAssetsOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "static"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "static", "style.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, Options{Assets: dir})

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	if rec := get("/static/style.css"); rec.Code != http.StatusOK || rec.Body.String() != "body{}" {
		t.Errorf("style.css = %d %q", rec.Code, rec.Body.String())
	}
	if rec := get("/static/playground.js"); rec.Code != http.StatusOK {
		t.Errorf("embedded playground.js = %d", rec.Code)
	}
	if rec := get("/"); rec.Code != http.StatusOK {
		t.Errorf("index with missing templates override = %d", rec.Code)
	}
}
