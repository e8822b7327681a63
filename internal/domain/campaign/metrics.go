// internal/domain/campaign/metrics.go
package campaign

import "github.com/shopspring/decimal"

// Metrics are the membership-derived rollups of a campaign.
type Metrics struct {
	ActualLeads   int             `json:"actual_leads"`
	ActualRevenue decimal.Decimal `json:"actual_revenue"`
}

// ComputeMetrics rebuilds the rollups from the full membership set.
//
// ActualLeads counts lead members. ActualRevenue sums the estimated value of
// converted lead members that carry one.
func ComputeMetrics(members []Member) Metrics {
	m := Metrics{ActualRevenue: decimal.Zero}
	for i := range members {
		if members[i].Type() != MemberTypeLead {
			continue
		}
		m.ActualLeads++
		if members[i].Status == MemberStatusConverted && members[i].LeadEstimatedValue.Valid {
			m.ActualRevenue = m.ActualRevenue.Add(members[i].LeadEstimatedValue.Decimal)
		}
	}
	return m
}
