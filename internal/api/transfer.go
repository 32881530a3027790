package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pnl-dashboard/internal/exchange"
)

// export streams the export document as a download.
func (s *Server) export(c *gin.Context) {
	data, name, err := s.svc.Export(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/json", data)
}

// importStrategies reads an export document from the body or a multipart "file" field.
// The policy query parameter is replace (default) or merge.
func (s *Server) importStrategies(c *gin.Context) {
	raw := c.DefaultQuery("policy", string(exchange.PolicyReplace))
	policy, err := exchange.ParsePolicy(raw)
	if err != nil {
		writeError(c, err)
		return
	}

	var data []byte
	if strings.HasPrefix(c.ContentType(), "multipart/") {
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
		data, err = io.ReadAll(f)
		if err != nil {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
	} else {
		data, err = io.ReadAll(c.Request.Body)
		if err != nil {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
	}

	res, err := s.svc.Import(c.Request.Context(), data, policy)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, res, warningMeta(res.Warning))
}
