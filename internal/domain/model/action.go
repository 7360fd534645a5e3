package model

import "time"

// Decision values for an engagement action.
const (
	DecisionAct      = "ACT"
	DecisionNoAction = "NO_ACTION"
)

// Engagement channels.
const (
	ChannelPush  = "push_notification"
	ChannelEmail = "email"
)

// TimingImmediate is the only dispatch timing produced today.
const TimingImmediate = "immediate"

// Action is one engagement decision for a player. For DecisionAct the
// Channel/Content (and Subject for email) fields are set; for
// DecisionNoAction only Reason is.
type Action struct {
	ID        string    `json:"id,omitempty"` // assigned at dispatch
	PlayerID  string    `json:"player_id"`
	Decision  string    `json:"decision"`
	Channel   string    `json:"channel,omitempty"`
	Content   string    `json:"content,omitempty"`
	Subject   string    `json:"subject,omitempty"` // email only
	Timing    string    `json:"timing,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Simulated player responses to a dispatched action.
const (
	ResponseOpened         = "opened"
	ResponseIgnored        = "ignored"
	ResponseReturnedToGame = "returned_to_game"
)

// Feedback records the simulated player response to a dispatched action.
type Feedback struct {
	ActionID   string    `json:"action_id"`
	PlayerID   string    `json:"player_id"`
	Response   string    `json:"response"`
	Notes      string    `json:"notes,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
