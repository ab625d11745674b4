// Workflow HTTP handlers.
//
// This file exposes the REST endpoints that drive the execution pipeline:
//   - GET  /templates   (list available workflow templates)
//   - POST /generate    (run one workflow invocation)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results and pipeline errors into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/automate-gpt/go-workflow-backend/internal/domain"
	"github.com/automate-gpt/go-workflow-backend/internal/http/middleware"
	"github.com/automate-gpt/go-workflow-backend/internal/services"
	"github.com/automate-gpt/go-workflow-backend/internal/workflow"
)

//
// Service contracts (context-aware)
//

// GenerationRunner defines the pipeline invocation consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type GenerationRunner interface {
	// Execute runs one workflow invocation and returns the recorded result.
	Execute(ctx context.Context, workflowID, rawInput, userID string) (*domain.WorkflowResult, error)
}

// HistoryStore defines the per-user persistence operations the history and
// settings endpoints need.
type HistoryStore interface {
	GetHistory(ctx context.Context, userID string) ([]domain.WorkflowResult, error)
	ClearHistory(ctx context.Context, userID string) error
	ExportHistory(ctx context.Context, userID string) (*domain.HistoryExport, error)
	GetSettings(ctx context.Context, userID string) (domain.AppSettings, error)
	SaveSettings(ctx context.Context, settings domain.AppSettings, userID string) error
}

// AccountManager defines the account and session operations consumed by the
// auth endpoints.
type AccountManager interface {
	SignUp(ctx context.Context, name, email, password string) (*domain.UserAccount, error)
	SignIn(ctx context.Context, email, password string) (*domain.UserAccount, error)
	SignOut(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.UserAccount, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for workflows, history, settings,
// accounts, and file extraction. It depends on abstract service interfaces to
// keep transport concerns separate from pipeline logic.
type Handlers struct {
	gen      GenerationRunner
	store    HistoryStore
	accounts AccountManager
}

// New constructs and returns a Handlers instance bound to the given services.
func New(gen GenerationRunner, store HistoryStore, accounts AccountManager) *Handlers {
	return &Handlers{gen: gen, store: store, accounts: accounts}
}

// userID extracts the caller identity from the Gin context (set by upstream
// middleware), falling back to the "X-User-ID" header. An empty result means
// the anonymous namespace; history and settings still work, they are just
// shared by every anonymous caller.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return ""
}

//
// DTOs
//

// GenerateRequest is the JSON payload for running a workflow.
type GenerateRequest struct {
	// WorkflowID selects the template; must be one of the registered IDs.
	WorkflowID string `json:"workflow_id" binding:"required"`
	// Input is the user text substituted into the template.
	Input string `json:"input"`
}

// TemplatesResponse wraps the template catalog.
type TemplatesResponse struct {
	Templates []domain.WorkflowTemplate `json:"templates"`
}

//
// Handlers
//

// ListTemplates returns the full workflow template catalog in registry order.
// The first entry is the default selection for clients.
func (h *Handlers) ListTemplates(c *gin.Context) {
	ok(c, http.StatusOK, TemplatesResponse{Templates: workflow.Templates()})
}

// Generate runs one pipeline invocation and returns the recorded result.
//
// Error mapping:
//   - invalid JSON / missing workflow_id      -> 400 bad_request
//   - empty input                             -> 400 empty_input
//   - oversized input                         -> 400 input_too_long
//   - unknown workflow id                     -> 404 workflow_not_found
//   - all providers failed, transient         -> 503 providers_unavailable
//   - all providers failed, non-transient     -> 502 generation_failed
func (h *Handlers) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: workflow_id is required")
		return
	}

	res, err := h.gen.Execute(c.Request.Context(), req.WorkflowID, req.Input, userID(c))
	if err != nil {
		middleware.ObserveGeneration(req.WorkflowID, false, 0)

		var all *services.AllProvidersError
		switch {
		case errors.Is(err, services.ErrEmptyInput):
			fail(c, http.StatusBadRequest, ErrCodeEmptyInput, "Please provide input text")
		case errors.Is(err, services.ErrInputTooLong):
			fail(c, http.StatusBadRequest, ErrCodeInputTooLong, "input exceeds the maximum length")
		case errors.Is(err, workflow.ErrTemplateNotFound):
			fail(c, http.StatusNotFound, ErrCodeWorkflowNotFound, "unknown workflow: "+req.WorkflowID)
		case errors.As(err, &all):
			if all.Transient() {
				fail(c, http.StatusServiceUnavailable, ErrCodeProvidersUnavailable, all.Message())
			} else {
				fail(c, http.StatusBadGateway, ErrCodeGenerationFailed, all.Message())
			}
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "generation failed unexpectedly")
		}
		return
	}

	middleware.ObserveGeneration(req.WorkflowID, true, res.TokenCount)
	ok(c, http.StatusOK, res)
}
