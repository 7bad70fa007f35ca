package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Response is the body of every non-record reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Image   string `json:"image,omitempty"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleList(c echo.Context) error {
	projects, err := s.store.List()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *Server) handleGet(c echo.Context) error {
	p, err := s.project(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleCreate(c echo.Context) error {
	var in types.ProjectInput
	if err := c.Bind(&in); err != nil {
		return bindError(err)
	}
	p, err := s.store.Create(in)
	if err != nil {
		return err
	}
	s.logger.Debug("project created", zap.Int64("id", p.ID))
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleUpdate(c echo.Context) error {
	id, err := projectID(c)
	if err != nil {
		return err
	}
	var patch types.ProjectPatch
	if err := c.Bind(&patch); err != nil {
		return bindError(err)
	}
	if patch.IsEmpty() {
		return fmt.Errorf("%w: no fields to update", types.ErrValidation)
	}
	p, err := s.store.Update(id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// handleDelete removes the record and then its thumbnail file.
func (s *Server) handleDelete(c echo.Context) error {
	p, err := s.project(c)
	if err != nil {
		return err
	}
	if err := s.store.Delete(p.ID); err != nil {
		return err
	}
	if p.Image != "" {
		if err := s.assets.Release(p.Image); err != nil {
			s.logger.Warn("removing image of deleted project",
				zap.Int64("id", p.ID), zap.String("ref", p.Image), zap.Error(err))
		}
	}
	return c.JSON(http.StatusOK, Response{Success: true, Message: "project deleted"})
}

func (s *Server) handleUpload(c echo.Context) error {
	id, err := projectID(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return fmt.Errorf("%w: no file supplied in field \"image\"", types.ErrValidation)
		}
		return bindError(err)
	}
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("%w: reading upload: %w", types.ErrStorage, err)
	}
	defer f.Close()

	ref, err := s.assets.Accept(id, fh.Filename, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Response{Success: true, Image: ref})
}

func (s *Server) handleOpenFolder(c echo.Context) error {
	p, err := s.project(c)
	if err != nil {
		return err
	}
	if err := s.openFolder(p.Path); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Response{Success: true})
}

// project loads the record named by the :id path parameter.
func (s *Server) project(c echo.Context) (types.Project, error) {
	id, err := projectID(c)
	if err != nil {
		return types.Project{}, err
	}
	p, ok, err := s.store.Get(id)
	if err != nil {
		return types.Project{}, err
	}
	if !ok {
		return types.Project{}, fmt.Errorf("%w: id %d", types.ErrNotFound, id)
	}
	return p, nil
}

// projectID parses :id. A non-numeric id names no project.
func projectID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q", types.ErrNotFound, c.Param("id"))
	}
	return id, nil
}

func bindError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code != http.StatusBadRequest {
		return err
	}
	return fmt.Errorf("%w: invalid request body", types.ErrValidation)
}

// handleError writes every failure as {"success":false,"message":...}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, msg := status(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		)
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, Response{Success: false, Message: msg})
	}
	if err != nil {
		s.logger.Error("writing error response", zap.Error(err))
	}
}

// status maps an error to its HTTP status and client message. Server-side
// failures get a generic message; the cause is only logged.
func status(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code, fmt.Sprint(he.Message)
	case errors.Is(err, types.ErrValidation), errors.Is(err, types.ErrUnsupportedType):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}
