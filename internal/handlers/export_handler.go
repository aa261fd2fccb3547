package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/agent-crm/internal/export"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/middleware"
	ucClient "github.com/BruksfildServices01/agent-crm/internal/usecase/client"
)

type ExportHandler struct {
	export *ucClient.ExportClients
}

func NewExportHandler(uc *ucClient.ExportClients) *ExportHandler {
	return &ExportHandler{export: uc}
}

// Download serves GET /export. Failures flash on the dashboard.
func (h *ExportHandler) Download(c *gin.Context) {
	if err := h.write(c); err != nil {
		flashError(c, err, dashboardPath(middleware.PrincipalFrom(c)))
	}
}

func (h *ExportHandler) APIDownload(c *gin.Context) {
	if err := h.write(c); err != nil {
		httperr.Abort(c, err)
	}
}

func (h *ExportHandler) write(c *gin.Context) error {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return err
	}

	clients, err := h.export.Execute(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, clients); err != nil {
		return httperr.Wrap(httperr.CodeStorageError, "export_failed", err)
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(format, time.Now())))
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
	return nil
}
