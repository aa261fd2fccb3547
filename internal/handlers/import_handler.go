package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/httpresp"
	"github.com/BruksfildServices01/agent-crm/internal/importer"
	"github.com/BruksfildServices01/agent-crm/internal/middleware"
	"github.com/BruksfildServices01/agent-crm/internal/session"
)

const uploadField = "file"

type ImportHandler struct {
	importer *importer.Importer
}

func NewImportHandler(im *importer.Importer) *ImportHandler {
	return &ImportHandler{importer: im}
}

// Upload handles the dashboard form. Every outcome is a flash and a
// redirect to the caller's dashboard.
func (h *ImportHandler) Upload(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	back := dashboardPath(p)

	res, err := h.run(c, p)
	if err != nil {
		flashError(c, err, back)
		return
	}

	category := session.FlashSuccess
	if res.Inserted == 0 && len(res.Skipped) > 0 {
		category = session.FlashInfo
	}
	middleware.Session(c).Flash(c, category, importer.SuccessMessage(res))
	redirect(c, back)
}

func (h *ImportHandler) APIImport(c *gin.Context) {
	res, err := h.run(c, middleware.PrincipalFrom(c))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	httpresp.OK(c, res)
}

func (h *ImportHandler) run(c *gin.Context, p access.Principal) (importer.Result, error) {
	// The importer checks permission too.
	if !p.Authenticated() {
		return importer.Result{}, access.Deny(access.ReasonLoginRequired).Err()
	}

	fh, err := c.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return importer.Result{}, httperr.New(httperr.CodeValidationFailed, "No file part in request.")
		}
		return importer.Result{}, httperr.Wrap(httperr.CodeValidationFailed, "Could not read the upload.", err)
	}

	f, err := fh.Open()
	if err != nil {
		return importer.Result{}, httperr.Wrap(httperr.CodeValidationFailed, "Could not read the upload.", err)
	}
	defer f.Close()

	return h.importer.Import(c.Request.Context(), importer.Request{
		Filename:    fh.Filename,
		ContentType: contentType(fh),
		Body:        f,
		Actor:       p,
	})
}

func contentType(fh *multipart.FileHeader) string {
	return fh.Header.Get("Content-Type")
}
