package feature

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/quant-trader/internal/models"
)

// LeagueProfile holds per-league context constants used as features
type LeagueProfile struct {
	Competitiveness float64
	AvgGoals        float64
	AvgCards        float64
	HomeAdvantage   float64
}

var defaultLeagueProfile = LeagueProfile{
	Competitiveness: 0.6,
	AvgGoals:        2.7,
	AvgCards:        4.2,
	HomeAdvantage:   0.55,
}

var leagueProfiles = map[string]LeagueProfile{
	"Premier League": {Competitiveness: 0.9, AvgGoals: 2.8, AvgCards: 3.8, HomeAdvantage: 0.55},
	"La Liga":        {Competitiveness: 0.8, AvgGoals: 2.6, AvgCards: 4.9, HomeAdvantage: 0.57},
	"Bundesliga":     {Competitiveness: 0.7, AvgGoals: 3.1, AvgCards: 3.6, HomeAdvantage: 0.54},
	"Serie A":        {Competitiveness: 0.7, AvgGoals: 2.7, AvgCards: 4.6, HomeAdvantage: 0.56},
}

// eventInfluence weights how strongly an event kind typically moves a match
var eventInfluence = map[models.EventKind]float64{
	models.EventGoal:         1.0,
	models.EventCard:         0.7,
	models.EventSubstitution: 0.3,
	models.EventMatchStart:   0.5,
	models.EventHalfTime:     0.4,
	models.EventFullTime:     0.2,
	models.EventMatchEnd:     0.2,
	models.EventOddsUpdate:   0.1,
}

var matchStatusCodes = map[models.MatchStatus]float64{
	models.StatusScheduled: 0,
	models.StatusLive:      1,
	models.StatusHalfTime:  2,
	models.StatusFinished:  3,
	models.StatusPostponed: 4,
	models.StatusCancelled: 5,
}

// Engineer converts match events into feature vectors while maintaining team
// statistics and match context as owned shared state
type Engineer struct {
	teams    *teamStore
	contexts *contextStore
	logger   *logrus.Logger
	now      func() time.Time
}

// NewEngineer creates a feature engineer with empty stores
func NewEngineer(logger *logrus.Logger) *Engineer {
	return &Engineer{
		teams:    newTeamStore(),
		contexts: newContextStore(),
		logger:   logger,
		now:      time.Now,
	}
}

// ExtractFeatures updates the match context with the event, then assembles the
// full named feature set for the match
func (e *Engineer) ExtractFeatures(event *models.MatchEvent) (*models.FeatureVector, error) {
	ctx := e.contexts.get(event.MatchID)
	ctx.Apply(event)
	snap := ctx.snapshot()

	home := e.teams.get(event.TeamHome)
	away := e.teams.get(event.TeamAway)

	// Cards accrue on the season record too, surviving ClearMatch
	if event.Detail.Kind == models.EventCard && event.Detail.Team != "" {
		e.teams.get(event.Detail.Team).RecordCard(event.Detail.Card == models.CardRed)
	}

	homeElo, homeAttack, homeDefense := home.Snapshot()
	awayElo, awayAttack, awayDefense := away.Snapshot()

	league, ok := leagueProfiles[event.League]
	if !ok {
		league = defaultLeagueProfile
	}

	now := e.now()
	features := map[string]float64{
		// Match state
		"minute":           float64(snap.Minute),
		"home_score":       float64(snap.HomeScore),
		"away_score":       float64(snap.AwayScore),
		"score_difference": float64(snap.HomeScore - snap.AwayScore),
		"total_goals":      float64(snap.HomeScore + snap.AwayScore),
		"momentum":         snap.Momentum,
		"intensity":        snap.Intensity,
		"game_phase":       gamePhase(snap.Minute),
		"time_pressure":    timePressure(snap.Minute),

		// Team strength
		"home_elo":            homeElo,
		"away_elo":            awayElo,
		"elo_difference":      homeElo - awayElo,
		"home_attack":         homeAttack,
		"home_defense":        homeDefense,
		"away_attack":         awayAttack,
		"away_defense":        awayDefense,
		"home_expected_goals": homeAttack * awayDefense * league.AvgGoals / 2.0,
		"away_expected_goals": awayAttack * homeDefense * league.AvgGoals / 2.0,

		// Form and discipline
		"home_form":              home.FormScore(),
		"away_form":              away.FormScore(),
		"form_difference":        home.FormScore() - away.FormScore(),
		"home_discipline":        float64(snap.HomeYellows) + 2.0*float64(snap.HomeReds),
		"away_discipline":        float64(snap.AwayYellows) + 2.0*float64(snap.AwayReds),
		"home_season_discipline": home.DisciplineTally(),
		"away_season_discipline": away.DisciplineTally(),

		// Situational
		"match_status":    matchStatusCodes[event.MatchStatus],
		"event_influence": eventInfluence[event.Detail.Kind],
		"home_advantage":  1.0,

		// Temporal, from wall clock
		"hour_of_day": float64(now.Hour()),
		"is_evening":  boolFeature(now.Hour() >= 18),
		"day_of_week": float64(now.Weekday()),
		"is_weekend":  boolFeature(now.Weekday() == time.Saturday || now.Weekday() == time.Sunday),

		// League context
		"league_competitiveness": league.Competitiveness,
		"league_avg_goals":       league.AvgGoals,
		"league_avg_cards":       league.AvgCards,
		"league_home_advantage":  league.HomeAdvantage,
	}

	e.logger.WithFields(logrus.Fields{
		"match_id": event.MatchID,
		"kind":     event.Detail.Kind,
		"features": len(features),
	}).Debug("Extracted feature vector")

	return &models.FeatureVector{
		MatchID:   event.MatchID,
		Features:  features,
		Timestamp: now.UTC(),
	}, nil
}

// UpdateTeamStats folds a finished match result into a team's season record
func (e *Engineer) UpdateTeamStats(team string, goalsFor, goalsAgainst int) {
	ts := e.teams.get(team)
	ts.RecordResult(goalsFor, goalsAgainst)

	elo, attack, defense := ts.Snapshot()
	e.logger.WithFields(logrus.Fields{
		"team":    team,
		"elo":     elo,
		"attack":  attack,
		"defense": defense,
	}).Info("Updated team statistics")
}

// TeamStats returns the live statistics entry for a team, creating it if
// absent
func (e *Engineer) TeamStats(team string) *TeamStats {
	return e.teams.get(team)
}

// MatchContext returns the live context entry for a match, creating it if
// absent
func (e *Engineer) MatchContext(matchID string) *MatchContext {
	return e.contexts.get(matchID)
}

// ClearMatch drops the context of a completed match
func (e *Engineer) ClearMatch(matchID string) {
	e.contexts.remove(matchID)
}

// gamePhase buckets the match minute into a 5-level ordinal scaled to [0,1]
func gamePhase(minute int) float64 {
	switch {
	case minute <= 15:
		return 0.0
	case minute <= 30:
		return 0.25
	case minute <= 45:
		return 0.5
	case minute <= 70:
		return 0.75
	default:
		return 1.0
	}
}

// timePressure rises linearly over the final quarter hour
func timePressure(minute int) float64 {
	if minute < 75 {
		return float64(minute) / 90.0 * 0.5
	}
	return 0.5 + float64(minute-75)/15.0*0.5
}

func boolFeature(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
