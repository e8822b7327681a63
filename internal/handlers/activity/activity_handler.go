// internal/handlers/activity/activity_handler.go
package activity

import (
	"net/http"

	"salescrm-service/internal/domain/activity"
	"salescrm-service/internal/middleware"
	"salescrm-service/internal/pkg/response"
	service "salescrm-service/internal/service/activity"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activityService *service.ActivityService
}

func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// ListActivities returns an entity's timeline
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	var filters activity.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	activities, err := h.activityService.List(c.Request.Context(), middleware.MustGetTenantID(c), &filters)
	if err != nil {
		response.FromError(c, "failed to list activities", err)
		return
	}

	response.Success(c, http.StatusOK, "activities retrieved", gin.H{
		"activities": activities,
		"count":      len(activities),
	})
}
