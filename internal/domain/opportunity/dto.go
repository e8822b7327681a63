// internal/domain/opportunity/dto.go
package opportunity

type TransitionRequest struct {
	Status Status `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type MoveToStageRequest struct {
	StageID int64 `json:"stage_id" binding:"required"`
}

// View is the read model returned to callers.
type View struct {
	Opportunity
	AllowedTransitions []Status `json:"allowed_transitions"`
}

func NewView(o *Opportunity) *View {
	o.Recalculate()
	return &View{Opportunity: *o, AllowedTransitions: AllowedTransitions(o.Status)}
}
