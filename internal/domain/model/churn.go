package model

import "strings"

// ChurnRisk is a coarse classification of a player's likelihood to stop
// playing. The model's free-text output is validated into this enum and
// never trusted verbatim.
type ChurnRisk string

// Recognized churn risk levels.
const (
	RiskLow     ChurnRisk = "low"
	RiskMedium  ChurnRisk = "medium"
	RiskHigh    ChurnRisk = "high"
	RiskUnknown ChurnRisk = "unknown"
)

// Valid reports whether the risk is one of the recognized levels.
func (r ChurnRisk) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskUnknown:
		return true
	}
	return false
}

// ParseChurnRisk maps arbitrary model output onto the enum. Anything
// outside the recognized levels collapses to RiskUnknown.
func ParseChurnRisk(s string) ChurnRisk {
	r := ChurnRisk(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return RiskUnknown
	}
	return r
}

// ChurnEstimate is the AI-assessed churn classification for one player.
type ChurnEstimate struct {
	PlayerID string    `json:"player_id"`
	Risk     ChurnRisk `json:"churn_risk"`
	Reason   string    `json:"reason"`
}
