// internal/handlers/lead/lead_handler.go
package lead

import (
	"net/http"
	"strconv"

	"salescrm-service/internal/domain/lead"
	"salescrm-service/internal/middleware"
	"salescrm-service/internal/pkg/response"
	service "salescrm-service/internal/service/lead"

	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	leadService *service.LeadService
}

func NewLeadHandler(leadService *service.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

func leadID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid lead ID", err)
		return 0, false
	}
	return id, true
}

// Convert converts a lead using explicit targets
func (h *LeadHandler) Convert(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	var req lead.ConvertLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.leadService.Convert(c.Request.Context(), service.ConvertCommand{
		TenantID:     middleware.MustGetTenantID(c),
		LeadID:       id,
		Options:      req,
		ActingUserID: middleware.MustGetIdentityID(c),
	})
	if err != nil {
		response.FromError(c, "failed to convert lead", err)
		return
	}

	response.SuccessWithWarnings(c, http.StatusOK, "lead converted", result, result.Warnings)
}

// ConvertToCustomer creates a customer from the lead
func (h *LeadHandler) ConvertToCustomer(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	result, err := h.leadService.ConvertToCustomer(c.Request.Context(), middleware.MustGetTenantID(c), id, middleware.MustGetIdentityID(c))
	if err != nil {
		response.FromError(c, "failed to convert lead", err)
		return
	}

	response.SuccessWithWarnings(c, http.StatusOK, "lead converted to customer", result, result.Warnings)
}

// ConvertToOpportunity creates an opportunity from the lead
func (h *LeadHandler) ConvertToOpportunity(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	result, err := h.leadService.ConvertToOpportunity(c.Request.Context(), middleware.MustGetTenantID(c), id, middleware.MustGetIdentityID(c))
	if err != nil {
		response.FromError(c, "failed to convert lead", err)
		return
	}

	response.SuccessWithWarnings(c, http.StatusOK, "lead converted to opportunity", result, result.Warnings)
}

// ComputeScore scores the lead and stores the result
func (h *LeadHandler) ComputeScore(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	result, err := h.leadService.ComputeLeadScore(c.Request.Context(), middleware.MustGetTenantID(c), id, middleware.MustGetIdentityID(c))
	if err != nil {
		response.FromError(c, "failed to score lead", err)
		return
	}

	response.SuccessWithWarnings(c, http.StatusOK, "lead scored", result, result.Warnings)
}
