// History and settings HTTP handlers.
//
// This file exposes the per-user persistence endpoints:
//   - GET    /history          (newest-first result list)
//   - DELETE /history          (clear the namespace)
//   - GET    /history/export   (download as a JSON attachment)
//   - GET    /settings         (effective generation settings)
//   - PUT    /settings         (replace settings, validated)
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/automate-gpt/go-workflow-backend/internal/domain"
)

// HistoryResponse wraps the result list. Results are newest-first.
type HistoryResponse struct {
	Results []domain.WorkflowResult `json:"results"`
}

// UpdateSettingsRequest is the JSON payload for replacing settings.
type UpdateSettingsRequest struct {
	Model     string `json:"model" binding:"required"`
	MaxTokens int    `json:"max_tokens" binding:"required"`
}

// GetHistory returns the caller's result history, newest first. A namespace
// with no recorded results yields an empty list, not an error.
func (h *Handlers) GetHistory(c *gin.Context) {
	results, err := h.store.GetHistory(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load history")
		return
	}
	ok(c, http.StatusOK, HistoryResponse{Results: results})
}

// ClearHistory removes every result in the caller's namespace. Clearing an
// already-empty namespace succeeds.
func (h *Handlers) ClearHistory(c *gin.Context) {
	if err := h.store.ClearHistory(c.Request.Context(), userID(c)); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not clear history")
		return
	}
	noContent(c)
}

// ExportHistory streams the caller's history as a downloadable JSON document
// with an export timestamp and record count.
func (h *Handlers) ExportHistory(c *gin.Context) {
	export, err := h.store.ExportHistory(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not export history")
		return
	}
	filename := "automate-gpt-history-" + time.Now().UTC().Format("2006-01-02") + ".json"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ok(c, http.StatusOK, export)
}

// GetSettings returns the effective settings for the caller's namespace.
// Defaults are returned when nothing has been saved yet.
func (h *Handlers) GetSettings(c *gin.Context) {
	settings, err := h.store.GetSettings(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load settings")
		return
	}
	ok(c, http.StatusOK, settings)
}

// UpdateSettings replaces the caller's settings. The model must be non-empty
// and max_tokens must be within the accepted range.
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: model and max_tokens are required")
		return
	}
	settings := domain.AppSettings{Model: req.Model, MaxTokens: req.MaxTokens}
	if !settings.Valid() {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "max_tokens must be between 100 and 4000")
		return
	}
	if err := h.store.SaveSettings(c.Request.Context(), settings, userID(c)); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not save settings")
		return
	}
	ok(c, http.StatusOK, settings)
}
