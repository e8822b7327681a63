// internal/app/router.go
package app

import (
	activityHandler "salescrm-service/internal/handlers/activity"
	campaignHandler "salescrm-service/internal/handlers/campaign"
	leadHandler "salescrm-service/internal/handlers/lead"
	notifyHandler "salescrm-service/internal/handlers/notification"
	opportunityHandler "salescrm-service/internal/handlers/opportunity"
	pipelineHandler "salescrm-service/internal/handlers/pipeline"
	wsHandler "salescrm-service/internal/handlers/websocket"
	"salescrm-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Roles allowed to change tenant pipeline configuration
var pipelineAdminRoles = []string{"admin", "sales_manager"}

type Handlers struct {
	OpportunityHandler *opportunityHandler.OpportunityHandler
	LeadHandler        *leadHandler.LeadHandler
	CampaignHandler    *campaignHandler.CampaignHandler
	PipelineHandler    *pipelineHandler.PipelineHandler
	ActivityHandler    *activityHandler.ActivityHandler
	NotifHandler       *notifyHandler.NotificationHandler
	WSHandler          *wsHandler.WebSocketHandler
	AuthMiddleware     *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	protected := api.Group("")
	protected.Use(h.AuthMiddleware.Auth())

	// ==================== Opportunities ====================
	opportunities := protected.Group("/opportunities")
	{
		opportunities.GET("/:id", h.OpportunityHandler.GetOpportunity)
		opportunities.POST("/:id/status", h.OpportunityHandler.TransitionStatus)
		opportunities.PUT("/:id/stage", h.OpportunityHandler.MoveToStage)
	}

	// ==================== Leads ====================
	leads := protected.Group("/leads")
	{
		leads.POST("/:id/convert", h.LeadHandler.Convert)
		leads.POST("/:id/convert/customer", h.LeadHandler.ConvertToCustomer)
		leads.POST("/:id/convert/opportunity", h.LeadHandler.ConvertToOpportunity)
		leads.POST("/:id/score", h.LeadHandler.ComputeScore)
	}

	// ==================== Campaigns ====================
	campaigns := protected.Group("/campaigns")
	{
		campaigns.GET("/:id", h.CampaignHandler.GetCampaign)
		campaigns.POST("/:id/members", h.CampaignHandler.AddMember)
		campaigns.POST("/:id/metrics/recompute", h.CampaignHandler.RecomputeMetrics)
	}
	members := protected.Group("/campaign-members")
	{
		members.PUT("/:id/status", h.CampaignHandler.UpdateMemberStatus)
		members.DELETE("/:id", h.CampaignHandler.RemoveMember)
	}

	// ==================== Pipeline ====================
	stages := protected.Group("/pipeline-stages")
	{
		stages.GET("", h.PipelineHandler.ListStages)
		stages.POST("", h.AuthMiddleware.RequireRole(pipelineAdminRoles...), h.PipelineHandler.CreateStage)
	}

	// ==================== Timeline ====================
	protected.GET("/activities", h.ActivityHandler.ListActivities)

	// ==================== Notifications ====================
	notifications := protected.Group("/notifications")
	{
		notifications.GET("", h.NotifHandler.GetNotifications)
		notifications.PUT("/:id/read", h.NotifHandler.MarkAsRead)
	}

	// ==================== Admin ====================
	protected.GET("/ws/stats", h.AuthMiddleware.RequireRole("admin"), h.WSHandler.GetStats)
}
