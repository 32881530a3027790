package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pnl-dashboard/internal/forecast"
	"pnl-dashboard/internal/metrics"
)

// DefaultWindowWeeks is the best/worst window when the request names none.
const DefaultWindowWeeks = 4

func parseFloat(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

// queryInt reads a positive integer query parameter, falling back to def when absent.
func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return v, nil
}

// strategyID maps the "current" alias to the service's current selection.
func strategyID(c *gin.Context) string {
	id := c.Param("id")
	if id == "current" {
		return ""
	}
	return id
}

func (s *Server) dashboard(c *gin.Context) {
	d, err := s.svc.Dashboard(strategyID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, d, nil)
}

func (s *Server) statistics(c *gin.Context) {
	d, err := s.svc.Dashboard(strategyID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, d.Statistics, map[string]any{"plType": d.PLType, "headline": d.Headline})
}

func (s *Server) weekly(c *gin.Context) {
	w, err := s.svc.Weekly(strategyID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, gin.H{"cumulativeByWeek": w.CumulativeByWeek, "weekStarts": w.WeekStarts}, map[string]any{"weeks": w.Len()})
}

func (s *Server) bestWorst(c *gin.Context) {
	window, err := queryInt(c, "window", DefaultWindowWeeks)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	bw, err := s.svc.BestWorst(strategyID(c), window)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, bw, nil)
}

func (s *Server) period(c *gin.Context) {
	id := strategyID(c)
	start, err := queryInt(c, "start", 1)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	end, err := queryInt(c, "end", 0)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if end == 0 {
		w, err := s.svc.Weekly(id)
		if err != nil {
			writeError(c, err)
			return
		}
		end = max(w.Len(), start)
	}
	if end < start {
		Error(c, http.StatusBadRequest, "end must not be before start", nil)
		return
	}
	a, err := s.svc.PeriodAnalysis(id, start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, a, map[string]any{"start": start, "end": end})
}

func (s *Server) compare(c *gin.Context) {
	var ids []string
	for _, raw := range strings.Split(c.Query("ids"), ",") {
		if id := strings.TrimSpace(raw); id != "" {
			ids = append(ids, id)
		}
	}

	var weekRange *metrics.WeekRange
	if c.Query("start") != "" || c.Query("end") != "" {
		start, err := queryInt(c, "start", 1)
		if err != nil {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		end, err := queryInt(c, "end", start)
		if err != nil {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		weekRange = &metrics.WeekRange{Start: start, End: end}
	}

	rows, err := s.svc.Compare(ids, weekRange)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, rows, nil)
}

func (s *Server) heatmap(c *gin.Context) {
	h, err := s.svc.Heatmap(strategyID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, h, nil)
}

func (s *Server) forecast(c *gin.Context) {
	view, err := forecast.ParseView(c.Query("view"))
	if err != nil {
		writeError(c, err)
		return
	}
	f, err := s.svc.Forecast(strategyID(c), view)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, f, nil)
}

func (s *Server) overlay(c *gin.Context) {
	o, err := s.svc.Overlay(strategyID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, o, nil)
}
