// internal/handlers/pipeline/pipeline_handler.go
package pipeline

import (
	"net/http"

	"salescrm-service/internal/domain/pipeline"
	"salescrm-service/internal/middleware"
	"salescrm-service/internal/pkg/response"
	service "salescrm-service/internal/service/pipeline"

	"github.com/gin-gonic/gin"
)

type PipelineHandler struct {
	pipelineService *service.PipelineService
}

func NewPipelineHandler(pipelineService *service.PipelineService) *PipelineHandler {
	return &PipelineHandler{pipelineService: pipelineService}
}

// ListStages returns the tenant's pipeline in order
func (h *PipelineHandler) ListStages(c *gin.Context) {
	stages, err := h.pipelineService.ListStages(c.Request.Context(), middleware.MustGetTenantID(c))
	if err != nil {
		response.FromError(c, "failed to list pipeline stages", err)
		return
	}

	response.Success(c, http.StatusOK, "pipeline stages retrieved", stages)
}

// CreateStage adds a stage to the tenant's pipeline
func (h *PipelineHandler) CreateStage(c *gin.Context) {
	var req pipeline.CreateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	stage, err := h.pipelineService.CreateStage(c.Request.Context(), middleware.MustGetTenantID(c), &req)
	if err != nil {
		response.FromError(c, "failed to create pipeline stage", err)
		return
	}

	response.Success(c, http.StatusCreated, "pipeline stage created", stage)
}
