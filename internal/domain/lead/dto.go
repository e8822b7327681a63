// internal/domain/lead/dto.go
package lead

// ConvertLeadRequest selects the conversion targets. Each target is either
// created from the lead or an existing record of the same tenant.
type ConvertLeadRequest struct {
	CreateCustomer    bool   `json:"create_customer"`
	CustomerID        *int64 `json:"customer_id"`
	CreateOpportunity bool   `json:"create_opportunity"`
	OpportunityID     *int64 `json:"opportunity_id"`
}
