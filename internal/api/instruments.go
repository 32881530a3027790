package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/normalization"
)

func (s *Server) listInstruments(c *gin.Context) {
	Ok(c, s.svc.Instruments(), nil)
}

func (s *Server) addInstrument(c *gin.Context) {
	var req struct {
		Name string          `json:"name"`
		Rows [][]domain.Cell `json:"rows"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	m, err := s.svc.AddInstrument(c.Request.Context(), req.Name, req.Rows)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, m.Instrument, map[string]any{"skipped": m.Skipped, "warning": m.Warning})
}

// uploadInstrument accepts a date,close CSV in the "file" field.
func (s *Server) uploadInstrument(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		Error(c, http.StatusBadRequest, "file is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	rows, err := normalization.ReadCSV(f)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	name := c.PostForm("name")
	if name == "" {
		name = strings.TrimSuffix(fh.Filename, ".csv")
	}
	m, err := s.svc.AddInstrument(c.Request.Context(), name, rows)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, m.Instrument, map[string]any{"skipped": m.Skipped, "warning": m.Warning})
}

func (s *Server) deleteInstrument(c *gin.Context) {
	warning, err := s.svc.DeleteInstrument(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, gin.H{"id": c.Param("id")}, warningMeta(warning))
}
