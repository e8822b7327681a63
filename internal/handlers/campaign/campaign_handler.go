// internal/handlers/campaign/campaign_handler.go
package campaign

import (
	"net/http"
	"strconv"

	"salescrm-service/internal/domain/campaign"
	"salescrm-service/internal/middleware"
	"salescrm-service/internal/pkg/response"
	service "salescrm-service/internal/service/campaign"

	"github.com/gin-gonic/gin"
)

type CampaignHandler struct {
	campaignService *service.CampaignService
}

func NewCampaignHandler(campaignService *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
	}
}

func paramID(c *gin.Context, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid "+what+" ID", err)
		return 0, false
	}
	return id, true
}

// GetCampaign returns a campaign with its stored metrics
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id, ok := paramID(c, "campaign")
	if !ok {
		return
	}

	result, err := h.campaignService.GetCampaign(c.Request.Context(), middleware.MustGetTenantID(c), id)
	if err != nil {
		response.FromError(c, "failed to get campaign", err)
		return
	}

	response.Success(c, http.StatusOK, "campaign retrieved", result)
}

// AddMember enrolls a lead, customer or contact
func (h *CampaignHandler) AddMember(c *gin.Context) {
	id, ok := paramID(c, "campaign")
	if !ok {
		return
	}

	var req campaign.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.campaignService.AddMember(c.Request.Context(), middleware.MustGetTenantID(c), id, &req)
	if err != nil {
		response.FromError(c, "failed to add campaign member", err)
		return
	}

	response.Success(c, http.StatusCreated, "campaign member added", result)
}

// RecomputeMetrics rebuilds the campaign rollups from its members
func (h *CampaignHandler) RecomputeMetrics(c *gin.Context) {
	id, ok := paramID(c, "campaign")
	if !ok {
		return
	}

	metrics, err := h.campaignService.RecomputeMetrics(c.Request.Context(), middleware.MustGetTenantID(c), id)
	if err != nil {
		response.FromError(c, "failed to recompute campaign metrics", err)
		return
	}

	response.Success(c, http.StatusOK, "campaign metrics recomputed", metrics)
}

// UpdateMemberStatus changes a member's response status
func (h *CampaignHandler) UpdateMemberStatus(c *gin.Context) {
	id, ok := paramID(c, "member")
	if !ok {
		return
	}

	var req campaign.UpdateMemberStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.campaignService.UpdateMemberStatus(c.Request.Context(), middleware.MustGetTenantID(c), id, req.Status)
	if err != nil {
		response.FromError(c, "failed to update campaign member", err)
		return
	}

	response.Success(c, http.StatusOK, "campaign member updated", result)
}

// RemoveMember deletes a membership
func (h *CampaignHandler) RemoveMember(c *gin.Context) {
	id, ok := paramID(c, "member")
	if !ok {
		return
	}

	removed, err := h.campaignService.RemoveMember(c.Request.Context(), middleware.MustGetTenantID(c), id)
	if err != nil {
		response.FromError(c, "failed to remove campaign member", err)
		return
	}
	if !removed {
		response.NotFound(c, "campaign member not found")
		return
	}

	response.Success(c, http.StatusOK, "campaign member removed", gin.H{"removed": true})
}
