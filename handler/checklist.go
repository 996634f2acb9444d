package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/askar0007amirkhanov/ai-precheck/compliance"
	"github.com/askar0007amirkhanov/ai-precheck/middleware"
	"github.com/askar0007amirkhanov/ai-precheck/model"
	"github.com/askar0007amirkhanov/ai-precheck/pkg/logger"
	"github.com/askar0007amirkhanov/ai-precheck/service"
)

// Uploaded checklist documents are capped before they reach the parser.
const maxChecklistBytes = 1 << 20

type ChecklistHandler struct {
	extractor service.Extractor
	store     *service.ChecklistStore
}

func NewChecklistHandler(extractor service.Extractor, store *service.ChecklistStore) *ChecklistHandler {
	return &ChecklistHandler{extractor: extractor, store: store}
}

type checklistJSONRequest struct {
	Name  string          `json:"name"`
	Rules []model.RawRule `json:"rules" binding:"required"`
}

// Upload accepts a custom checklist either as pre-parsed JSON rules or as
// an uploaded plain-text document that the extractor converts to rules.
// PDF and DOCX extraction belongs to the upstream parser, so those types
// are rejected here.
func (h *ChecklistHandler) Upload(c *gin.Context) {
	clientID := middleware.GetClientID(c)

	var name string
	var rules []model.RawRule

	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		var ok bool
		name, rules, ok = h.rulesFromFile(c)
		if !ok {
			return
		}
	} else {
		var req checklistJSONRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rules are required"})
			return
		}
		name = req.Name
		rules = req.Rules
	}

	if name == "" {
		name = "Custom checklist"
	}

	checklist, notes, err := compliance.Compile(name, rules)
	if err != nil {
		var invalid *compliance.InvalidChecklistError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": invalid.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compile checklist"})
		return
	}

	stored := &service.StoredChecklist{
		ID:        uuid.New().String(),
		Name:      name,
		ClientID:  clientID,
		Checklist: checklist,
		Notes:     notes,
	}
	h.store.Save(stored)

	logger.Info(c.Request.Context(), "custom checklist compiled",
		"checklist_id", stored.ID, "rules", len(checklist.Rules), "notes", len(notes))

	c.JSON(http.StatusOK, gin.H{
		"checklist_id": stored.ID,
		"name":         name,
		"rule_count":   len(checklist.Rules),
		"sections":     checklist.SectionOrder,
		"notes":        notes,
	})
}

// rulesFromFile reads the uploaded document and parses rules out of it.
func (h *ChecklistHandler) rulesFromFile(c *gin.Context) (string, []model.RawRule, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return "", nil, false
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".txt", ".md":
	case ".pdf", ".docx":
		c.JSON(http.StatusUnsupportedMediaType, gin.H{
			"error": "PDF and DOCX parsing is handled upstream; upload extracted text or JSON rules",
		})
		return "", nil, false
	default:
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Only TXT and MD files are allowed"})
		return "", nil, false
	}

	content, err := io.ReadAll(io.LimitReader(file, maxChecklistBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return "", nil, false
	}
	text := strings.TrimSpace(string(content))
	if len(text) < 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is empty or contains no extractable text"})
		return "", nil, false
	}

	rules, err := h.extractor.ParseChecklist(c.Request.Context(), text)
	if err != nil {
		logger.Error(c.Request.Context(), "checklist parsing failed", "filename", header.Filename, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to parse checklist rules"})
		return "", nil, false
	}

	return strings.TrimSuffix(header.Filename, ext), rules, true
}

// Get returns a stored checklist with its compilation notes.
func (h *ChecklistHandler) Get(c *gin.Context) {
	stored, ok := h.ownedChecklist(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stored)
}

// List returns the current client's stored checklists.
func (h *ChecklistHandler) List(c *gin.Context) {
	clientID := middleware.GetClientID(c)

	checklists := h.store.ListByClient(clientID)
	result := make([]gin.H, len(checklists))
	for i, cl := range checklists {
		result[i] = gin.H{
			"checklist_id": cl.ID,
			"name":         cl.Name,
			"rule_count":   len(cl.Checklist.Rules),
			"created_at":   cl.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	c.JSON(http.StatusOK, gin.H{"checklists": result})
}

// Delete removes a stored checklist.
func (h *ChecklistHandler) Delete(c *gin.Context) {
	stored, ok := h.ownedChecklist(c)
	if !ok {
		return
	}
	h.store.Delete(stored.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Checklist deleted"})
}

func (h *ChecklistHandler) ownedChecklist(c *gin.Context) (*service.StoredChecklist, bool) {
	clientID := middleware.GetClientID(c)
	stored := h.store.Get(c.Param("id"))
	if stored == nil || stored.ClientID != clientID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Checklist not found"})
		return nil, false
	}
	return stored, true
}
