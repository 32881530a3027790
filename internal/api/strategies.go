package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pnl-dashboard/internal/dashboard"
	"pnl-dashboard/internal/domain"
	"pnl-dashboard/internal/normalization"
)

type ingestRequest struct {
	Name       string                `json:"name"`
	FileName   string                `json:"fileName"`
	Capital    float64               `json:"capital"`
	Rows       [][]domain.Cell       `json:"rows"`
	Mapping    *domain.ColumnMapping `json:"mapping"`
	AutoDetect bool                  `json:"autoDetect"`
}

type sheetsRequest struct {
	Name          string                `json:"name"`
	Capital       float64               `json:"capital"`
	AccessToken   string                `json:"accessToken"`
	SpreadsheetID string                `json:"spreadsheetId"`
	SheetName     string                `json:"sheetName"`
	Range         string                `json:"range"`
	Mapping       *domain.ColumnMapping `json:"mapping"`
}

type updateRequest struct {
	Name    *string  `json:"name"`
	Capital *float64 `json:"capital"`
}

type filtersRequest struct {
	Year  *string             `json:"year"`
	Month *domain.MonthFilter `json:"month"`
}

type rowsRequest struct {
	Rows [][]domain.Cell `json:"rows"`
}

type tokenRequest struct {
	AccessToken string `json:"accessToken"`
}

type instrumentLinkRequest struct {
	InstrumentID string `json:"instrumentId"`
}

func mutationMeta(m dashboard.Mutation) map[string]any {
	meta := map[string]any{}
	if m.Total > 0 {
		meta["skipped"] = m.Skipped
		meta["total"] = m.Total
	}
	if m.Warning != "" {
		meta["warning"] = m.Warning
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

// token resolves the spreadsheet token: body, then header, then the configured default.
func (s *Server) token(c *gin.Context, fromBody string) string {
	if t := strings.TrimSpace(fromBody); t != "" {
		return t
	}
	if t := strings.TrimSpace(c.GetHeader("X-Sheets-Token")); t != "" {
		return t
	}
	return s.sheetsToken
}

func (s *Server) listStrategies(c *gin.Context) {
	Ok(c, s.svc.List(), map[string]any{
		"currentStrategyId": s.svc.CurrentID(),
		"plType":            s.svc.PLType(),
		"max":               domain.MaxStrategies,
	})
}

// targetID resolves the "current" alias for mutations. With no current strategy the
// result is "" and the service reports the id as not found.
func (s *Server) targetID(c *gin.Context) string {
	if id := strategyID(c); id != "" {
		return id
	}
	return s.svc.CurrentID()
}

// getStrategy also answers /strategies/current.
func (s *Server) getStrategy(c *gin.Context) {
	id := strategyID(c)
	if id == "" {
		id = s.svc.CurrentID()
	}
	if id == "" {
		writeError(c, dashboard.ErrNoCurrentStrategy)
		return
	}
	st, err := s.svc.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, st, nil)
}

func (s *Server) ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	m, err := s.svc.Ingest(c.Request.Context(), dashboard.IngestRequest{
		Name:       req.Name,
		FileName:   req.FileName,
		Capital:    req.Capital,
		Rows:       req.Rows,
		Mapping:    req.Mapping,
		AutoDetect: req.AutoDetect,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, m.Strategy, mutationMeta(m))
}

// upload accepts a multipart CSV trade log in the "file" field.
func (s *Server) upload(c *gin.Context) {
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

	var capital float64
	if raw := c.PostForm("capital"); raw != "" {
		if capital, err = parseFloat(raw); err != nil {
			Error(c, http.StatusBadRequest, "capital must be a number", nil)
			return
		}
	}
	name := c.PostForm("name")
	if name == "" {
		name = strings.TrimSuffix(fh.Filename, ".csv")
	}

	m, err := s.svc.Ingest(c.Request.Context(), dashboard.IngestRequest{
		Name:       name,
		FileName:   fh.Filename,
		Capital:    capital,
		Rows:       rows,
		AutoDetect: true,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, m.Strategy, mutationMeta(m))
}

func (s *Server) ingestSheets(c *gin.Context) {
	var req sheetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	m, err := s.svc.IngestSheets(c.Request.Context(), dashboard.SheetsRequest{
		Name:          req.Name,
		Capital:       req.Capital,
		Token:         s.token(c, req.AccessToken),
		SpreadsheetID: req.SpreadsheetID,
		SheetName:     req.SheetName,
		Range:         req.Range,
		Mapping:       req.Mapping,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, m.Strategy, mutationMeta(m))
}

func (s *Server) detectColumns(c *gin.Context) {
	var req struct {
		Header []domain.Cell `json:"header"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	mapping := s.svc.DetectColumns(req.Header)
	Ok(c, mapping, map[string]any{"complete": mapping.Validate() == nil})
}

func (s *Server) deleteStrategy(c *gin.Context) {
	m, err := s.svc.Delete(c.Request.Context(), s.targetID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, gin.H{"id": m.Strategy.ID, "currentStrategyId": s.svc.CurrentID()}, warningMeta(m.Warning))
}

func (s *Server) updateStrategy(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	id := s.targetID(c)
	ctx := c.Request.Context()

	st, err := s.svc.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}
	var warning string
	if req.Name != nil {
		res, err := s.svc.Rename(ctx, id, *req.Name)
		if err != nil {
			writeError(c, err)
			return
		}
		st, warning = res.Strategy, res.Warning
	}
	if req.Capital != nil {
		res, err := s.svc.SetCapital(ctx, id, *req.Capital)
		if err != nil {
			writeError(c, err)
			return
		}
		st, warning = res.Strategy, res.Warning
	}
	Ok(c, st, warningMeta(warning))
}

func (s *Server) switchStrategy(c *gin.Context) {
	m, err := s.svc.Switch(c.Request.Context(), s.targetID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, m.Strategy, warningMeta(m.Warning))
}

func (s *Server) refresh(c *gin.Context) {
	var req rowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	m, err := s.svc.Refresh(c.Request.Context(), s.targetID(c), req.Rows)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, m.Strategy, mutationMeta(m))
}

func (s *Server) sync(c *gin.Context) {
	var req tokenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
	}
	m, err := s.svc.RefreshFromSheets(c.Request.Context(), s.targetID(c), s.token(c, req.AccessToken))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, m.Strategy, mutationMeta(m))
}

// setFilters applies the year first, since a year change clears the month.
func (s *Server) setFilters(c *gin.Context) {
	var req filtersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	id := s.targetID(c)
	ctx := c.Request.Context()

	st, err := s.svc.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}
	var warning string
	if req.Year != nil {
		m, err := s.svc.SetYear(ctx, id, *req.Year)
		if err != nil {
			writeError(c, err)
			return
		}
		st, warning = m.Strategy, m.Warning
	}
	if req.Month != nil {
		m, err := s.svc.SetMonth(ctx, id, req.Month)
		if err != nil {
			writeError(c, err)
			return
		}
		st, warning = m.Strategy, m.Warning
	}
	Ok(c, st, warningMeta(warning))
}

func (s *Server) clearMonth(c *gin.Context) {
	m, err := s.svc.ClearMonth(c.Request.Context(), s.targetID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, m.Strategy, warningMeta(m.Warning))
}

func (s *Server) linkInstrument(c *gin.Context) {
	var req instrumentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	m, err := s.svc.LinkInstrument(c.Request.Context(), s.targetID(c), req.InstrumentID)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, m.Strategy, warningMeta(m.Warning))
}

func (s *Server) unlinkInstrument(c *gin.Context) {
	m, err := s.svc.UnlinkInstrument(c.Request.Context(), s.targetID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, m.Strategy, warningMeta(m.Warning))
}

func (s *Server) getPLType(c *gin.Context) {
	Ok(c, gin.H{"plType": s.svc.PLType()}, nil)
}

func (s *Server) setPLType(c *gin.Context) {
	var req struct {
		PLType domain.PLType `json:"plType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err := s.svc.SetPLType(c.Request.Context(), req.PLType); err != nil {
		writeError(c, err)
		return
	}
	Ok(c, gin.H{"plType": s.svc.PLType()}, nil)
}
