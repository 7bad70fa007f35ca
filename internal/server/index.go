package server

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

//go:embed templates/index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").
	Funcs(template.FuncMap{"initial": initial}).
	Parse(indexHTML))

// initial is the placeholder letter shown for projects without a thumbnail.
func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

type indexData struct {
	Projects []types.Project
}

// handleIndex renders the catalogue page with the project list embedded
// as a script value.
func (s *Server) handleIndex(c echo.Context) error {
	projects, err := s.store.List()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, indexData{Projects: projects}); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
