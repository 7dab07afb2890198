// Package models defines the domain entities shared by the decision pipeline.
package models

import (
	"time"

	"github.com/google/uuid"
)

// EventKind identifies the type of a match event
type EventKind string

const (
	EventMatchStart   EventKind = "match_start"
	EventGoal         EventKind = "goal"
	EventCard         EventKind = "card"
	EventSubstitution EventKind = "substitution"
	EventHalfTime     EventKind = "half_time"
	EventFullTime     EventKind = "full_time"
	EventMatchEnd     EventKind = "match_end"
	EventOddsUpdate   EventKind = "odds_update"
)

// CardKind distinguishes yellow from red cards
type CardKind string

const (
	CardYellow CardKind = "yellow"
	CardRed    CardKind = "red"
)

// MatchStatus represents the lifecycle state of a match
type MatchStatus string

const (
	StatusScheduled MatchStatus = "scheduled"
	StatusLive      MatchStatus = "live"
	StatusHalfTime  MatchStatus = "half_time"
	StatusFinished  MatchStatus = "finished"
	StatusPostponed MatchStatus = "postponed"
	StatusCancelled MatchStatus = "cancelled"
)

// Score represents the running score of a match
type Score struct {
	Home         int  `json:"home"`
	Away         int  `json:"away"`
	HalfTimeHome *int `json:"half_time_home,omitempty"`
	HalfTimeAway *int `json:"half_time_away,omitempty"`
}

// EventDetail carries the kind-specific payload of a match event. Only the
// fields relevant to the Kind are populated.
type EventDetail struct {
	Kind      EventKind `json:"kind"`
	Team      string    `json:"team,omitempty"`
	Player    string    `json:"player,omitempty"`
	PlayerIn  string    `json:"player_in,omitempty"`
	PlayerOut string    `json:"player_out,omitempty"`
	Card      CardKind  `json:"card,omitempty"`
	Minute    int       `json:"minute,omitempty"`
}

// MatchEvent is an immutable fact about a match at a point in time. It is
// created by the ingestion layer and consumed, never mutated, by every core
// component.
type MatchEvent struct {
	ID          uuid.UUID   `json:"id"`
	MatchID     string      `json:"match_id"`
	Timestamp   time.Time   `json:"timestamp"`
	Detail      EventDetail `json:"detail"`
	TeamHome    string      `json:"team_home"`
	TeamAway    string      `json:"team_away"`
	League      string      `json:"league"`
	Season      string      `json:"season"`
	MatchStatus MatchStatus `json:"match_status"`
	Score       *Score      `json:"score,omitempty"`
}

// NewMatchEvent creates a match event with a fresh ID and current timestamp
func NewMatchEvent(matchID string, detail EventDetail, teamHome, teamAway, league, season string) MatchEvent {
	return MatchEvent{
		ID:          uuid.New(),
		MatchID:     matchID,
		Timestamp:   time.Now().UTC(),
		Detail:      detail,
		TeamHome:    teamHome,
		TeamAway:    teamAway,
		League:      league,
		Season:      season,
		MatchStatus: StatusScheduled,
	}
}

// WithScore returns a copy of the event carrying the given score
func (e MatchEvent) WithScore(score Score) MatchEvent {
	e.Score = &score
	return e
}

// WithStatus returns a copy of the event carrying the given match status
func (e MatchEvent) WithStatus(status MatchStatus) MatchEvent {
	e.MatchStatus = status
	return e
}

// IsLive reports whether the match is in play (including half time)
func (e *MatchEvent) IsLive() bool {
	return e.MatchStatus == StatusLive || e.MatchStatus == StatusHalfTime
}

// IsFinished reports whether the match has completed
func (e *MatchEvent) IsFinished() bool {
	return e.MatchStatus == StatusFinished
}

// Minute returns the match minute carried by the event detail
func (e *MatchEvent) Minute() int {
	return e.Detail.Minute
}
