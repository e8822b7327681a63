// internal/service/lead/scorer.go
package lead

import (
	"database/sql"
	"strings"

	"salescrm-service/internal/domain/lead"
)

const maxScore = 100

var (
	ratingPoints = map[lead.Rating]int{
		lead.RatingHot:  30,
		lead.RatingWarm: 20,
		lead.RatingCold: 10,
	}
	statusPoints = map[lead.Status]int{
		lead.StatusQualified: 20,
		lead.StatusContacted: 10,
	}
)

// Score rates a lead from 0 to 100 using only its own attributes.
func Score(l *lead.Lead) int {
	if l == nil {
		return 0
	}

	score := 0
	if present(l.Email) {
		score += 10
	}
	if present(l.Phone) || present(l.Mobile) {
		score += 10
	}
	if present(l.CompanyName) {
		score += 10
	}
	if present(l.Industry) {
		score += 5
	}
	if l.EstimatedValue.Valid && l.EstimatedValue.Decimal.IsPositive() {
		score += 15
	}
	score += ratingPoints[l.Rating]
	score += statusPoints[l.Status]

	return min(score, maxScore)
}

func present(s sql.NullString) bool {
	return s.Valid && strings.TrimSpace(s.String) != ""
}
