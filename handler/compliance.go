package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/askar0007amirkhanov/ai-precheck/compliance"
	"github.com/askar0007amirkhanov/ai-precheck/config"
	"github.com/askar0007amirkhanov/ai-precheck/middleware"
	"github.com/askar0007amirkhanov/ai-precheck/model"
	"github.com/askar0007amirkhanov/ai-precheck/pkg/logger"
	"github.com/askar0007amirkhanov/ai-precheck/service"
)

type ComplianceHandler struct {
	limits     config.LimitsConfig
	crawler    *service.Crawler
	extractor  service.Extractor
	engine     *compliance.Engine
	store      service.ReportStore
	checklists *service.ChecklistStore
	renderer   *service.Renderer
	archive    *service.ArchiveService // nil when archiving is disabled
}

func NewComplianceHandler(
	limits config.LimitsConfig,
	crawler *service.Crawler,
	extractor service.Extractor,
	store service.ReportStore,
	checklists *service.ChecklistStore,
	archive *service.ArchiveService,
) *ComplianceHandler {
	return &ComplianceHandler{
		limits:     limits,
		crawler:    crawler,
		extractor:  extractor,
		engine:     compliance.NewEngine(),
		store:      store,
		checklists: checklists,
		renderer:   service.NewRenderer(),
		archive:    archive,
	}
}

type CheckRequest struct {
	URL         string `json:"url" binding:"required"`
	CompanyName string `json:"company_name" binding:"required"`
	ChecklistID string `json:"checklist_id,omitempty"`
}

type CheckResponse struct {
	ReportID    string                 `json:"report_id"`
	Score       int                    `json:"score"`
	Status      model.ComplianceStatus `json:"status"`
	Summary     string                 `json:"summary"`
	Sections    []model.SectionResult  `json:"sections"`
	DownloadURL string                 `json:"download_url"`
}

// Check runs a full compliance check: crawl, extract, evaluate, persist.
func (h *ComplianceHandler) Check(c *gin.Context) {
	clientID := middleware.GetClientID(c)

	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url and company_name are required"})
		return
	}
	if u, err := url.Parse(req.URL); err != nil || u.Scheme == "" || u.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid url"})
		return
	}

	if !h.allowCheck(c, clientID) {
		return
	}

	checklist, ok := h.resolveChecklist(c, req.ChecklistID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	logger.Info(ctx, "compliance check started", "client_id", clientID, "url", req.URL)

	crawled, err := h.crawler.Crawl(ctx, req.URL)
	if err != nil {
		logger.Warn(ctx, "crawl failed", "url", req.URL, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to crawl the website"})
		return
	}

	facts, err := h.extractor.ExtractFacts(ctx, crawled.Text)
	if err != nil {
		logger.Error(ctx, "fact extraction failed", "url", req.URL, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Compliance analysis failed"})
		return
	}
	if facts == nil {
		facts = model.FactStore{}
	}

	// Request context and crawl metadata backfill extraction gaps; the
	// extractor's answer wins when it found something.
	facts["site_url"] = req.URL
	facts.SetDefault("company_name", req.CompanyName)
	if crawled.HasViewportMeta {
		facts.SetDefault("viewport_meta", "present")
		facts.SetDefault("has_mobile_responsive", true)
	}
	if crawled.Language != "" {
		facts.SetDefault("site_primary_language", crawled.Language)
	}

	report := h.engine.Evaluate(checklist, facts)

	rec := &model.ReportRecord{
		ID:          report.ReportID,
		ClientID:    clientID,
		SiteURL:     req.URL,
		CompanyName: req.CompanyName,
		Score:       report.OverallScore,
		Status:      report.Status,
		Report:      report,
		CreatedAt:   time.Now(),
	}
	if err := h.store.Save(ctx, rec); err != nil {
		logger.Error(ctx, "failed to save report", "report_id", rec.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save report"})
		return
	}

	h.archiveReport(c, rec)

	logger.Info(ctx, "compliance check complete",
		"report_id", rec.ID, "score", rec.Score, "status", rec.Status)

	c.JSON(http.StatusOK, CheckResponse{
		ReportID:    report.ReportID,
		Score:       report.OverallScore,
		Status:      report.Status,
		Summary:     report.Summary,
		Sections:    report.Sections,
		DownloadURL: fmt.Sprintf("/api/v1/compliance/reports/%s/download", report.ReportID),
	})
}

// allowCheck enforces the per-client daily quota. Limit -1 disables it.
func (h *ComplianceHandler) allowCheck(c *gin.Context, clientID string) bool {
	limit := h.limits.DailyChecksPerClient
	if limit < 0 {
		return true
	}

	dayStart := time.Now().UTC().Truncate(24 * time.Hour)
	count, err := h.store.CountSince(c.Request.Context(), clientID, dayStart)
	if err != nil {
		logger.Error(c.Request.Context(), "quota check failed", "client_id", clientID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check quota"})
		return false
	}
	if count >= limit {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit: %d compliance check(s) per client per day. Try again tomorrow.", limit),
		})
		return false
	}
	return true
}

func (h *ComplianceHandler) resolveChecklist(c *gin.Context, checklistID string) (*model.Checklist, bool) {
	if checklistID == "" {
		return compliance.BuiltIn(), true
	}
	stored := h.checklists.Get(checklistID)
	if stored == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Checklist not found"})
		return nil, false
	}
	return stored.Checklist, true
}

// archiveReport uploads the rendered document when archiving is enabled.
// Failures are logged, never surfaced: the report is already persisted.
func (h *ComplianceHandler) archiveReport(c *gin.Context, rec *model.ReportRecord) {
	if h.archive == nil {
		return
	}
	doc, err := h.renderer.Render(rec)
	if err != nil {
		logger.Warn(c.Request.Context(), "report render for archive failed", "report_id", rec.ID, "error", err)
		return
	}
	if _, err := h.archive.StoreReport(c.Request.Context(), rec.ID, doc); err != nil {
		logger.Warn(c.Request.Context(), "report archive failed", "report_id", rec.ID, "error", err)
	}
}

// GetReport returns a saved report as JSON.
func (h *ComplianceHandler) GetReport(c *gin.Context) {
	rec, ok := h.ownedRecord(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListReports returns the current client's reports, newest first.
func (h *ComplianceHandler) ListReports(c *gin.Context) {
	clientID := middleware.GetClientID(c)

	records, err := h.store.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reports"})
		return
	}

	result := make([]gin.H, len(records))
	for i, rec := range records {
		result[i] = gin.H{
			"report_id":    rec.ID,
			"site_url":     rec.SiteURL,
			"company_name": rec.CompanyName,
			"score":        rec.Score,
			"status":       rec.Status,
			"created_at":   rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	c.JSON(http.StatusOK, gin.H{"reports": result})
}

// DownloadReport returns the report as an HTML document attachment.
func (h *ComplianceHandler) DownloadReport(c *gin.Context) {
	rec, ok := h.ownedRecord(c)
	if !ok {
		return
	}

	doc, err := h.renderer.Render(rec)
	if err != nil {
		logger.Error(c.Request.Context(), "report render failed", "report_id", rec.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render report"})
		return
	}

	filename := fmt.Sprintf("compliance_report_%s.html", url.QueryEscape(rec.CompanyName))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", filename))
	c.Data(http.StatusOK, "text/html; charset=utf-8", doc)
}

// DeleteReport removes a report and its archived document.
func (h *ComplianceHandler) DeleteReport(c *gin.Context) {
	rec, ok := h.ownedRecord(c)
	if !ok {
		return
	}

	if err := h.store.Delete(c.Request.Context(), rec.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete report"})
		return
	}
	if h.archive != nil {
		if err := h.archive.DeleteReport(c.Request.Context(), service.ObjectName(rec.ID)); err != nil {
			logger.Warn(c.Request.Context(), "archive delete failed", "report_id", rec.ID, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report deleted"})
}

// ownedRecord loads the :id report and hides other clients' reports.
func (h *ComplianceHandler) ownedRecord(c *gin.Context) (*model.ReportRecord, bool) {
	clientID := middleware.GetClientID(c)
	id := c.Param("id")

	rec, err := h.store.Get(c.Request.Context(), id)
	if errors.Is(err, service.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load report"})
		return nil, false
	}
	if rec.ClientID != clientID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return nil, false
	}
	return rec, true
}
