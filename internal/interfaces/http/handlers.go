package http

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hrkit/approval-engine/internal/application/service"
	"github.com/hrkit/approval-engine/internal/domain/entity"
	"github.com/hrkit/approval-engine/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	definitionService service.DefinitionService
	workflowService   service.WorkflowService
	inboxService      service.InboxService
	exportService     service.ExportService
	logger            Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	definitionService service.DefinitionService,
	workflowService service.WorkflowService,
	inboxService service.InboxService,
	exportService service.ExportService,
	logger Logger,
) *Handlers {
	return &Handlers{
		definitionService: definitionService,
		workflowService:   workflowService,
		inboxService:      inboxService,
		exportService:     exportService,
		logger:            logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// StepRequest is one step of a definition being created. Order is taken
// from array position, not from the payload.
type StepRequest struct {
	StepName     string `json:"step_name" binding:"required"`
	ApproverRole string `json:"approver_role" binding:"required"`
}

// CreateDefinitionRequest is the payload for POST /definitions
type CreateDefinitionRequest struct {
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description"`
	EntityType  string        `json:"entity_type" binding:"required"`
	Steps       []StepRequest `json:"steps"`
	IsActive    *bool         `json:"is_active"`
}

// InitiateRequest is the payload for POST /instances
type InitiateRequest struct {
	DefinitionID int64  `json:"definition_id" binding:"required"`
	EntityType   string `json:"entity_type" binding:"required"`
	EntityID     int64  `json:"entity_id" binding:"required"`
	InitiatedBy  string `json:"initiated_by" binding:"required"`
}

// ActionRequest is the payload for approve/reject actions
type ActionRequest struct {
	ActorEmail string `json:"actor_email" binding:"required"`
	ActorRole  string `json:"actor_role"`
	Comments   string `json:"comments"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// CreateDefinition handles POST /api/v1/definitions
func (h *Handlers) CreateDefinition(c *gin.Context) {
	var req CreateDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	steps := make([]entity.WorkflowStep, len(req.Steps))
	for i, s := range req.Steps {
		steps[i] = entity.WorkflowStep{
			StepName:     s.StepName,
			ApproverRole: s.ApproverRole,
		}
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	def, err := h.definitionService.Create(c.Request.Context(), &entity.WorkflowDefinition{
		Name:        req.Name,
		Description: req.Description,
		EntityType:  req.EntityType,
		IsActive:    isActive,
		Steps:       steps,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: def})
}

// ListDefinitions handles GET /api/v1/definitions
func (h *Handlers) ListDefinitions(c *gin.Context) {
	var (
		defs []*entity.WorkflowDefinition
		err  error
	)

	if entityType := c.Query("entity_type"); entityType != "" {
		defs, err = h.definitionService.FindActiveByEntityType(c.Request.Context(), entityType)
	} else {
		defs, err = h.definitionService.ListActive(c.Request.Context())
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: defs})
}

// GetDefinition handles GET /api/v1/definitions/:id
func (h *Handlers) GetDefinition(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	def, err := h.definitionService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: def})
}

// InitiateWorkflow handles POST /api/v1/instances
func (h *Handlers) InitiateWorkflow(c *gin.Context) {
	var req InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	inst, err := h.workflowService.Initiate(c.Request.Context(), req.DefinitionID, req.EntityType, req.EntityID, req.InitiatedBy)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: inst})
}

// ListInstancesByEntity handles GET /api/v1/instances
func (h *Handlers) ListInstancesByEntity(c *gin.Context) {
	entityType := c.Query("entity_type")
	entityIDStr := c.Query("entity_id")
	if entityType == "" || entityIDStr == "" {
		h.badRequest(c, "entity_type and entity_id are required", nil)
		return
	}

	entityID, err := strconv.ParseInt(entityIDStr, 10, 64)
	if err != nil {
		h.badRequest(c, "invalid entity_id", err)
		return
	}

	instances, err := h.workflowService.GetInstancesByEntity(c.Request.Context(), entityType, entityID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: instances})
}

// GetInstance handles GET /api/v1/instances/:id
func (h *Handlers) GetInstance(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	inst, err := h.workflowService.GetInstance(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: inst})
}

// ApproveStep handles POST /api/v1/instances/:id/approve
func (h *Handlers) ApproveStep(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	inst, err := h.workflowService.Approve(c.Request.Context(), id, req.ActorEmail, req.ActorRole, req.Comments)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: inst})
}

// RejectWorkflow handles POST /api/v1/instances/:id/reject
func (h *Handlers) RejectWorkflow(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	inst, err := h.workflowService.Reject(c.Request.Context(), id, req.ActorEmail, req.ActorRole, req.Comments)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: inst})
}

// GetHistory handles GET /api/v1/instances/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	entries, err := h.workflowService.GetHistory(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// ExportHistory handles GET /api/v1/instances/:id/history/export
func (h *Handlers) ExportHistory(c *gin.Context) {
	id, ok := h.paramID(c)
	if !ok {
		return
	}

	data, filename, err := h.exportService.ExportHistory(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.DataFromReader(
		http.StatusOK,
		int64(len(data)),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		bytes.NewReader(data),
		nil,
	)
}

// PendingApprovals handles GET /api/v1/approvals/pending
func (h *Handlers) PendingApprovals(c *gin.Context) {
	email := c.Query("email")
	role := c.Query("role")
	if role == "" {
		h.badRequest(c, "role is required", nil)
		return
	}

	pending, err := h.inboxService.PendingApprovals(c.Request.Context(), email, role)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: pending})
}

func (h *Handlers) paramID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.badRequest(c, "invalid id", err)
		return 0, false
	}
	return id, true
}

func (h *Handlers) badRequest(c *gin.Context, msg string, err error) {
	if err != nil {
		h.logger.Error(msg, "error", err, "path", c.Request.URL.Path)
	}
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// respondError maps domain errors to HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workflow.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, workflow.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, workflow.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, workflow.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(status, Response{Success: false, Error: err.Error()})
}
