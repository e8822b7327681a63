// internal/handlers/opportunity/opportunity_handler.go
package opportunity

import (
	"net/http"
	"strconv"

	"salescrm-service/internal/domain/opportunity"
	"salescrm-service/internal/middleware"
	"salescrm-service/internal/pkg/response"
	service "salescrm-service/internal/service/opportunity"

	"github.com/gin-gonic/gin"
)

type OpportunityHandler struct {
	opportunityService *service.OpportunityService
}

func NewOpportunityHandler(opportunityService *service.OpportunityService) *OpportunityHandler {
	return &OpportunityHandler{opportunityService: opportunityService}
}

// GetOpportunity returns the opportunity with its allowed next statuses
func (h *OpportunityHandler) GetOpportunity(c *gin.Context) {
	tenantID := middleware.MustGetTenantID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid opportunity ID", err)
		return
	}

	view, err := h.opportunityService.GetOpportunity(c.Request.Context(), tenantID, id)
	if err != nil {
		response.FromError(c, "failed to get opportunity", err)
		return
	}

	response.Success(c, http.StatusOK, "opportunity retrieved", view)
}

// TransitionStatus moves the opportunity to a new status
func (h *OpportunityHandler) TransitionStatus(c *gin.Context) {
	tenantID := middleware.MustGetTenantID(c)
	identityID := middleware.MustGetIdentityID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid opportunity ID", err)
		return
	}

	var req opportunity.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.opportunityService.Transition(c.Request.Context(), service.TransitionCommand{
		TenantID:      tenantID,
		OpportunityID: id,
		Status:        req.Status,
		Reason:        req.Reason,
		ActingUserID:  identityID,
	})
	if err != nil {
		response.FromError(c, "failed to change opportunity status", err)
		return
	}

	response.SuccessWithWarnings(c, http.StatusOK, "opportunity status updated", result, result.Warnings)
}

// MoveToStage places the opportunity on another pipeline stage
func (h *OpportunityHandler) MoveToStage(c *gin.Context) {
	tenantID := middleware.MustGetTenantID(c)
	identityID := middleware.MustGetIdentityID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid opportunity ID", err)
		return
	}

	var req opportunity.MoveToStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.opportunityService.MoveToStage(c.Request.Context(), tenantID, id, req.StageID, identityID)
	if err != nil {
		response.FromError(c, "failed to move opportunity", err)
		return
	}

	response.SuccessWithWarnings(c, http.StatusOK, "opportunity stage updated", result, result.Warnings)
}
