package api

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"voting_system/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedElection creates one village, one party and n voters
func seedElection(t *testing.T, conn *gorm.DB, n int) (domain.Village, domain.Party, []domain.Voter) {
	t.Helper()
	village := domain.Village{Name: "Kampung Vote"}
	require.NoError(t, conn.Create(&village).Error)
	party := domain.Party{Name: "Test Party", Color: "#3B82F6"}
	require.NoError(t, conn.Create(&party).Error)
	voters := make([]domain.Voter, n)
	for i := range voters {
		voters[i] = domain.Voter{
			Name:      fmt.Sprintf("Voter %02d", i),
			ICNumber:  fmt.Sprintf("9001019%05d", i),
			VillageID: village.ID,
		}
		require.NoError(t, conn.Create(&voters[i]).Error)
	}
	return village, party, voters
}

func TestCastVoteTransition(t *testing.T) {
	r, conn := newTestRouter(t)
	_, party, voters := seedElection(t, conn, 1)

	w := doJSON(t, r, http.MethodPost, "/api/voters/vote", map[string]any{
		"voter_id": voters[0].ID, "party_id": party.ID,
	})
	mustStatus(t, w, http.StatusOK)

	// The voter is now terminal VOTED
	var voter domain.Voter
	require.NoError(t, conn.First(&voter, voters[0].ID).Error)
	assert.True(t, voter.HasVoted)
	require.NotNil(t, voter.VotedAt)
	require.NotNil(t, voter.PartyVotedID)
	assert.Equal(t, party.ID, *voter.PartyVotedID)

	// Exactly one audit record exists and captures the request origin
	var logs []domain.VoteLog
	require.NoError(t, conn.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, voters[0].ID, logs[0].VoterID)
	assert.Equal(t, party.ID, logs[0].PartyID)
	assert.Equal(t, voter.VillageID, logs[0].VillageID)
	assert.NotEmpty(t, logs[0].IPAddress)
}

func TestCastVoteIsOneShot(t *testing.T) {
	r, conn := newTestRouter(t)
	_, party, voters := seedElection(t, conn, 1)

	w := doJSON(t, r, http.MethodPost, "/api/voters/vote", map[string]any{
		"voter_id": voters[0].ID, "party_id": party.ID,
	})
	mustStatus(t, w, http.StatusOK)

	// The second attempt fails with the deliberately ambiguous message
	w = doJSON(t, r, http.MethodPost, "/api/voters/vote", map[string]any{
		"voter_id": voters[0].ID, "party_id": party.ID,
	})
	mustStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, w.Body.String(), "Voter not found or has already voted")

	// And no second audit row appeared
	var count int64
	require.NoError(t, conn.Model(&domain.VoteLog{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCastVoteUnknownVoterSameError(t *testing.T) {
	r, conn := newTestRouter(t)
	_, party, _ := seedElection(t, conn, 1)

	// An unknown voter is indistinguishable from an already-voted one
	w := doJSON(t, r, http.MethodPost, "/api/voters/vote", map[string]any{
		"voter_id": 9999, "party_id": party.ID,
	})
	mustStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, w.Body.String(), "Voter not found or has already voted")
}

func TestCastVoteUnknownParty(t *testing.T) {
	r, conn := newTestRouter(t)
	_, _, voters := seedElection(t, conn, 1)

	w := doJSON(t, r, http.MethodPost, "/api/voters/vote", map[string]any{
		"voter_id": voters[0].ID, "party_id": 9999,
	})
	mustStatus(t, w, http.StatusNotFound)

	// The failed attempt left the voter untouched
	var voter domain.Voter
	require.NoError(t, conn.First(&voter, voters[0].ID).Error)
	assert.False(t, voter.HasVoted)
}

func TestCastVoteMissingFields(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/voters/vote", map[string]any{"voter_id": 1})
	mustStatus(t, w, http.StatusBadRequest)
}

func TestConcurrentCastsSingleSuccess(t *testing.T) {
	r, conn := newTestRouter(t)
	_, party, voters := seedElection(t, conn, 1)

	// Ten simultaneous casts for the same voter
	const attempts = 10
	results := make([]int, attempts)
	var wg sync.WaitGroup
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start.Wait() // Fire together
			w := doJSON(t, r, http.MethodPost, "/api/voters/vote", map[string]any{
				"voter_id": voters[0].ID, "party_id": party.ID,
			})
			results[i] = w.Code
		}(i)
	}
	start.Done()
	wg.Wait()

	// Exactly one success, the rest fail with the ambiguous error
	successes := 0
	for _, code := range results {
		if code == http.StatusOK {
			successes++
		} else {
			assert.Equal(t, http.StatusBadRequest, code)
		}
	}
	assert.Equal(t, 1, successes)

	// One state transition, one audit row
	var logCount int64
	require.NoError(t, conn.Model(&domain.VoteLog{}).Count(&logCount).Error)
	assert.EqualValues(t, 1, logCount)
}

func TestVotingStatsAggregates(t *testing.T) {
	r, conn := newTestRouter(t)
	village, party, voters := seedElection(t, conn, 5)

	// Cast three of the five votes through the API
	for i := 0; i < 3; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/voters/vote", map[string]any{
			"voter_id": voters[i].ID, "party_id": party.ID,
		})
		mustStatus(t, w, http.StatusOK)
	}

	w := doJSON(t, r, http.MethodGet, "/api/voters/stats", nil)
	mustStatus(t, w, http.StatusOK)
	var resp struct {
		Overall struct {
			TotalVoters              int64   `json:"total_voters"`
			TotalVotesCast           int64   `json:"total_votes_cast"`
			RemainingVoters          int64   `json:"remaining_voters"`
			OverallTurnoutPercentage float64 `json:"overall_turnout_percentage"`
		} `json:"overall"`
		ByParty []struct {
			Name      string `json:"name"`
			VoteCount int64  `json:"vote_count"`
		} `json:"by_party"`
		ByVillage []struct {
			Name              string  `json:"name"`
			VoterCount        int64   `json:"voter_count"`
			VotesCast         int64   `json:"votes_cast"`
			TurnoutPercentage float64 `json:"turnout_percentage"`
		} `json:"by_village"`
		RecentVotes []struct {
			VoterName   string `json:"voter_name"`
			PartyName   string `json:"party_name"`
			VillageName string `json:"village_name"`
		} `json:"recent_votes"`
	}
	decodeBody(t, w, &resp)

	assert.EqualValues(t, 5, resp.Overall.TotalVoters)
	assert.EqualValues(t, 3, resp.Overall.TotalVotesCast)
	assert.EqualValues(t, 2, resp.Overall.RemainingVoters)
	assert.Equal(t, 60.0, resp.Overall.OverallTurnoutPercentage)

	// total_votes_cast equals the per-party sum and the audit-log count
	var partySum int64
	for _, p := range resp.ByParty {
		partySum += p.VoteCount
	}
	assert.Equal(t, resp.Overall.TotalVotesCast, partySum)
	var logCount int64
	require.NoError(t, conn.Model(&domain.VoteLog{}).Count(&logCount).Error)
	assert.Equal(t, resp.Overall.TotalVotesCast, logCount)

	require.Len(t, resp.ByVillage, 1)
	assert.Equal(t, village.Name, resp.ByVillage[0].Name)
	assert.EqualValues(t, 5, resp.ByVillage[0].VoterCount)
	assert.EqualValues(t, 3, resp.ByVillage[0].VotesCast)
	assert.Equal(t, 60.0, resp.ByVillage[0].TurnoutPercentage)

	// Live feed carries the three vote events
	require.Len(t, resp.RecentVotes, 3)
	assert.Equal(t, party.Name, resp.RecentVotes[0].PartyName)
}

func TestVoteRateLimit(t *testing.T) {
	r, conn := newTestRouter(t)
	_, party, voters := seedElection(t, conn, 15)

	// The vote endpoint allows 10 attempts per window per IP
	for i := 0; i < 10; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/voters/vote", map[string]any{
			"voter_id": voters[i].ID, "party_id": party.ID,
		})
		mustStatus(t, w, http.StatusOK)
	}
	w := doJSON(t, r, http.MethodPost, "/api/voters/vote", map[string]any{
		"voter_id": voters[10].ID, "party_id": party.ID,
	})
	mustStatus(t, w, http.StatusTooManyRequests)
	assert.Contains(t, w.Body.String(), "Too many vote attempts")
}
