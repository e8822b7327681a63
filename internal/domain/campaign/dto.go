// internal/domain/campaign/dto.go
package campaign

type AddMemberRequest struct {
	LeadID     *int64       `json:"lead_id"`
	CustomerID *int64       `json:"customer_id"`
	ContactID  *int64       `json:"contact_id"`
	Status     MemberStatus `json:"status"`
}

type UpdateMemberStatusRequest struct {
	Status MemberStatus `json:"status" binding:"required"`
}

// MemberView is returned after a membership mutation, with the refreshed rollups.
type MemberView struct {
	Member  Member  `json:"member"`
	Metrics Metrics `json:"metrics"`
}
