package stats

import (
	"context" // Context for Redis operations
	"math"    // Rounding
	"time"    // Timestamps

	"voting_system/internal/domain" // Importing domain models
	"voting_system/internal/utils"  // Cache helpers

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Overall holds election-wide totals
type Overall struct {
	TotalVoters              int64   `json:"total_voters"`               // Registered voters
	TotalVotesCast           int64   `json:"total_votes_cast"`           // Votes cast so far
	RemainingVoters          int64   `json:"remaining_voters"`           // Voters yet to vote
	OverallTurnoutPercentage float64 `json:"overall_turnout_percentage"` // Turnout, 2 decimals
}

// PartyStat holds the vote count for one party
type PartyStat struct {
	ID           uint    `json:"id"`           // Party ID
	Name         string  `json:"name"`         // Party name
	Abbreviation string  `json:"abbreviation"` // Party abbreviation
	Color        string  `json:"color"`        // Party color
	VoteCount    int64   `json:"vote_count"`   // Votes received
	Percentage   float64 `json:"percentage"`   // Share of all cast votes, 2 decimals
}

// VillageStat holds turnout for one village
type VillageStat struct {
	ID                uint    `json:"id"`                 // Village ID
	Name              string  `json:"name"`               // Village name
	VoterCount        int64   `json:"voter_count"`        // Registered voters in the village
	VotesCast         int64   `json:"votes_cast"`         // Votes cast in the village
	TurnoutPercentage float64 `json:"turnout_percentage"` // Village turnout, 2 decimals
}

// RecentVote is one entry of the live vote feed
type RecentVote struct {
	VoterName   string    `json:"voter_name"`   // Voter display name
	PartyName   string    `json:"party_name"`   // Party display name
	PartyColor  string    `json:"party_color"`  // Party color for the chart
	VillageName string    `json:"village_name"` // Village display name
	VotedAt     time.Time `json:"voted_at"`     // Cast timestamp
}

// Statistics is the full aggregate pushed to dashboard clients
type Statistics struct {
	Overall     Overall       `json:"overall"`      // Election-wide totals
	ByParty     []PartyStat   `json:"by_party"`     // Per-party counts
	ByVillage   []VillageStat `json:"by_village"`   // Per-village turnout
	RecentVotes []RecentVote  `json:"recent_votes"` // Newest 10 vote events
	Timestamp   time.Time     `json:"timestamp"`    // When the aggregate was computed
}

// Compute recomputes the full statistics aggregate from the database
func Compute(db *gorm.DB) (*Statistics, error) {
	var overall Overall
	// Count registered voters
	if err := db.Model(&domain.Voter{}).Count(&overall.TotalVoters).Error; err != nil {
		return nil, err
	}
	// Count cast votes
	if err := db.Model(&domain.Voter{}).Where("has_voted = ?", true).Count(&overall.TotalVotesCast).Error; err != nil {
		return nil, err
	}
	overall.RemainingVoters = overall.TotalVoters - overall.TotalVotesCast
	if overall.TotalVoters > 0 {
		overall.OverallTurnoutPercentage = round2(float64(overall.TotalVotesCast) * 100 / float64(overall.TotalVoters))
	}

	// Per-party counts, every party listed even with zero votes
	byParty := []PartyStat{}
	if err := db.Raw(`
		SELECT p.id, p.name, p.abbreviation, p.color, COUNT(v.id) AS vote_count
		FROM parties p
		LEFT JOIN voters v ON v.party_voted_id = p.id AND v.has_voted = ?
		GROUP BY p.id, p.name, p.abbreviation, p.color
		ORDER BY vote_count DESC, p.name`, true).Scan(&byParty).Error; err != nil {
		return nil, err
	}
	// Percentage of all cast votes, computed here so MySQL and SQLite agree
	for i := range byParty {
		if overall.TotalVotesCast > 0 {
			byParty[i].Percentage = round2(float64(byParty[i].VoteCount) * 100 / float64(overall.TotalVotesCast))
		}
	}

	// Per-village turnout
	byVillage := []VillageStat{}
	if err := db.Raw(`
		SELECT vil.id, vil.name,
			COUNT(v.id) AS voter_count,
			COUNT(CASE WHEN v.has_voted = ? THEN 1 END) AS votes_cast
		FROM villages vil
		LEFT JOIN voters v ON v.village_id = vil.id
		GROUP BY vil.id, vil.name
		ORDER BY vil.name`, true).Scan(&byVillage).Error; err != nil {
		return nil, err
	}
	for i := range byVillage {
		if byVillage[i].VoterCount > 0 {
			byVillage[i].TurnoutPercentage = round2(float64(byVillage[i].VotesCast) * 100 / float64(byVillage[i].VoterCount))
		}
	}

	// Newest 10 vote events for the live feed
	recent := []RecentVote{}
	if err := db.Raw(`
		SELECT v.name AS voter_name, p.name AS party_name, p.color AS party_color,
			vil.name AS village_name, vl.voted_at
		FROM vote_logs vl
		JOIN voters v ON vl.voter_id = v.id
		JOIN parties p ON vl.party_id = p.id
		JOIN villages vil ON vl.village_id = vil.id
		ORDER BY vl.voted_at DESC, vl.id DESC
		LIMIT 10`).Scan(&recent).Error; err != nil {
		return nil, err
	}

	return &Statistics{
		Overall:     overall,
		ByParty:     byParty,
		ByVillage:   byVillage,
		RecentVotes: recent,
		Timestamp:   time.Now().UTC(),
	}, nil
}

// Get returns the statistics aggregate through a short-TTL Redis cache.
// A nil Redis client disables caching; cache failures fall through to the
// database so a Redis outage never breaks the stats endpoint.
func Get(ctx context.Context, db *gorm.DB, rdb *redis.Client) (*Statistics, error) {
	if rdb != nil {
		var cached Statistics
		found, err := utils.GetCache(ctx, rdb, utils.StatsCacheKey, &cached) // Try the cache first
		if err == nil && found {
			return &cached, nil
		}
		if err != nil {
			logrus.WithField("error", err.Error()).Warn("Stats cache read failed") // Fall through to DB
		}
	}
	s, err := Compute(db) // Recompute from the database
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		if err := utils.SetCache(ctx, rdb, utils.StatsCacheKey, s, utils.StatsCacheTTL); err != nil {
			logrus.WithField("error", err.Error()).Warn("Stats cache write failed")
		}
	}
	return s, nil
}

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
