package model

import "time"

// PlayerProfile is a behavioral projection over one player's event set.
// It carries no persisted identity and is recomputed per request.
type PlayerProfile struct {
	PlayerID          string    `json:"player_id"`
	FirstSeen         time.Time `json:"first_seen_date"`
	LastSeen          time.Time `json:"last_seen_date"`
	TotalSessions     int       `json:"total_sessions"`
	TotalEvents       int       `json:"total_events"`
	TotalRevenue      float64   `json:"total_revenue"`
	DaysSinceLastSeen int       `json:"days_since_last_seen"`
}

// Cohort names, in rule evaluation order.
const (
	CohortNewPlayers     = "new_players"
	CohortActiveSpenders = "active_spenders"
	CohortAtRiskOfChurn  = "at_risk_of_churn"
	CohortDormantPlayers = "dormant_players"
)

// CohortNames returns all cohort names in rule evaluation order.
func CohortNames() []string {
	return []string{CohortNewPlayers, CohortActiveSpenders, CohortAtRiskOfChurn, CohortDormantPlayers}
}
