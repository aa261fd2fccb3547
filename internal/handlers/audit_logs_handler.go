package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agent-crm/internal/access"
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/httpresp"
	"github.com/BruksfildServices01/agent-crm/internal/middleware"
	"github.com/BruksfildServices01/agent-crm/internal/models"
	"github.com/BruksfildServices01/agent-crm/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db       *gorm.DB
	policy   access.Policy
	timezone string
}

func NewAuditLogsHandler(db *gorm.DB, policy access.Policy, tz string) *AuditLogsHandler {
	return &AuditLogsHandler{db: db, policy: policy, timezone: tz}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	if err := access.Check(p, access.CapViewAudit, h.policy).Err(); err != nil {
		httperr.Abort(c, err)
		return
	}

	action := c.Query("action")
	entity := c.Query("entity")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	offset := (page - 1) * limit

	// --------------------------------------------------
	// Optional filters
	// --------------------------------------------------

	q := h.db.WithContext(c.Request.Context()).Model(&models.AuditLog{})

	if action != "" {
		q = q.Where("action = ?", action)
	}

	if entity != "" {
		q = q.Where("entity = ?", entity)
	}

	loc := timezone.Location(h.timezone)

	if from, ok := parseDate(c.Query("from"), loc); ok {
		q = q.Where("created_at >= ?", from)
	}

	if to, ok := parseDate(c.Query("to"), loc); ok {
		q = q.Where("created_at < ?", to.Add(24*time.Hour))
	}

	// --------------------------------------------------
	// Total
	// --------------------------------------------------

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "Could not count audit logs.")
		return
	}

	// --------------------------------------------------
	// Page
	// --------------------------------------------------

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {

		httperr.Internal(c, "audit_list_failed", "Could not list audit logs.")
		return
	}

	httpresp.Page(c, logs, page, limit, total)
}
