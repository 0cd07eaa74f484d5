package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"voting_system/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateVoterValidation(t *testing.T) {
	r, conn := newTestRouter(t)

	village := domain.Village{Name: "Kampung F"}
	require.NoError(t, conn.Create(&village).Error)

	// Short IC number
	w := doJSON(t, r, http.MethodPost, "/api/voters", map[string]any{
		"name": "Chan", "ic_number": "12345", "village_id": village.ID,
	})
	mustStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, w.Body.String(), "12 digits")

	// Non-digit IC number of the right length
	w = doJSON(t, r, http.MethodPost, "/api/voters", map[string]any{
		"name": "Chan", "ic_number": "90010110000X", "village_id": village.ID,
	})
	mustStatus(t, w, http.StatusBadRequest)

	// Missing fields
	w = doJSON(t, r, http.MethodPost, "/api/voters", map[string]any{"name": "Chan"})
	mustStatus(t, w, http.StatusBadRequest)

	// Unknown village
	w = doJSON(t, r, http.MethodPost, "/api/voters", map[string]any{
		"name": "Chan", "ic_number": "123456789012", "village_id": 9999,
	})
	mustStatus(t, w, http.StatusBadRequest)

	// Valid registration
	w = doJSON(t, r, http.MethodPost, "/api/voters", map[string]any{
		"name": "Chan", "ic_number": "123456789012", "village_id": village.ID,
	})
	mustStatus(t, w, http.StatusCreated)
	var created struct {
		Voter struct {
			ID          uint   `json:"id"`
			ICNumber    string `json:"ic_number"`
			HasVoted    bool   `json:"has_voted"`
			VillageName string `json:"village_name"`
		} `json:"voter"`
	}
	decodeBody(t, w, &created)
	assert.Equal(t, "123456789012", created.Voter.ICNumber)
	assert.False(t, created.Voter.HasVoted)
	assert.Equal(t, "Kampung F", created.Voter.VillageName)

	// Duplicate IC number is a conflict
	w = doJSON(t, r, http.MethodPost, "/api/voters", map[string]any{
		"name": "Chan Two", "ic_number": "123456789012", "village_id": village.ID,
	})
	mustStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, w.Body.String(), "IC number already exists")
}

func TestGetVoterRoundTrip(t *testing.T) {
	r, conn := newTestRouter(t)

	village := domain.Village{Name: "Kampung G"}
	require.NoError(t, conn.Create(&village).Error)
	voter := domain.Voter{Name: "Devi", ICNumber: "900101400001", VillageID: village.ID}
	require.NoError(t, conn.Create(&voter).Error)

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/voters/%d", voter.ID), nil)
	mustStatus(t, w, http.StatusOK)
	var fetched struct {
		Name        string  `json:"name"`
		ICNumber    string  `json:"ic_number"`
		VillageID   uint    `json:"village_id"`
		VillageName *string `json:"village_name"`
		HasVoted    bool    `json:"has_voted"`
	}
	decodeBody(t, w, &fetched)
	assert.Equal(t, "Devi", fetched.Name)
	assert.Equal(t, "900101400001", fetched.ICNumber)
	assert.Equal(t, village.ID, fetched.VillageID)
	require.NotNil(t, fetched.VillageName)
	assert.Equal(t, "Kampung G", *fetched.VillageName)
	assert.False(t, fetched.HasVoted)

	w = doJSON(t, r, http.MethodGet, "/api/voters/9999", nil)
	mustStatus(t, w, http.StatusNotFound)
}

func TestVoterPagination(t *testing.T) {
	r, conn := newTestRouter(t)

	village := domain.Village{Name: "Kampung H"}
	require.NoError(t, conn.Create(&village).Error)
	// 45 voters with sortable names
	for i := 0; i < 45; i++ {
		require.NoError(t, conn.Create(&domain.Voter{
			Name:      fmt.Sprintf("Voter %02d", i),
			ICNumber:  fmt.Sprintf("9001015%05d", i),
			VillageID: village.ID,
		}).Error)
	}

	w := doJSON(t, r, http.MethodGet, "/api/voters?limit=20&page=2", nil)
	mustStatus(t, w, http.StatusOK)
	var resp struct {
		Voters     []voterRow `json:"voters"`
		Pagination struct {
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
			Total int64 `json:"total"`
			Pages int   `json:"pages"`
		} `json:"pagination"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Voters, 20)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.EqualValues(t, 45, resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.Pages)
	// Page 2 of an ordered-by-name list starts at row 21
	assert.Equal(t, "Voter 20", resp.Voters[0].Name)
	assert.Equal(t, "Voter 39", resp.Voters[19].Name)
}

func TestVoterSearchAndVillageFilters(t *testing.T) {
	r, conn := newTestRouter(t)

	north := domain.Village{Name: "North"}
	south := domain.Village{Name: "South"}
	require.NoError(t, conn.Create(&north).Error)
	require.NoError(t, conn.Create(&south).Error)
	require.NoError(t, conn.Create(&domain.Voter{Name: "Aminah", ICNumber: "900101600001", VillageID: north.ID}).Error)
	require.NoError(t, conn.Create(&domain.Voter{Name: "Farid", ICNumber: "900101600002", VillageID: south.ID}).Error)

	// Substring search over the name
	w := doJSON(t, r, http.MethodGet, "/api/voters?search=mina", nil)
	mustStatus(t, w, http.StatusOK)
	var resp struct {
		Voters []voterRow `json:"voters"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Voters, 1)
	assert.Equal(t, "Aminah", resp.Voters[0].Name)

	// Substring search over the IC number
	w = doJSON(t, r, http.MethodGet, "/api/voters?search=600002", nil)
	decodeBody(t, w, &resp)
	require.Len(t, resp.Voters, 1)
	assert.Equal(t, "Farid", resp.Voters[0].Name)

	// Explicit numeric village filter
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/voters?village_id=%d", south.ID), nil)
	decodeBody(t, w, &resp)
	require.Len(t, resp.Voters, 1)
	assert.Equal(t, "Farid", resp.Voters[0].Name)

	// Explicit name village filter
	w = doJSON(t, r, http.MethodGet, "/api/voters?village_name=North", nil)
	decodeBody(t, w, &resp)
	require.Len(t, resp.Voters, 1)
	assert.Equal(t, "Aminah", resp.Voters[0].Name)
}

func TestUpdateVoter(t *testing.T) {
	r, conn := newTestRouter(t)

	village := domain.Village{Name: "Kampung I"}
	require.NoError(t, conn.Create(&village).Error)
	voter := domain.Voter{Name: "Gopal", ICNumber: "900101700001", VillageID: village.ID}
	other := domain.Voter{Name: "Hana", ICNumber: "900101700002", VillageID: village.ID}
	require.NoError(t, conn.Create(&voter).Error)
	require.NoError(t, conn.Create(&other).Error)

	// IC collision with a different voter
	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/voters/%d", voter.ID), map[string]any{
		"name": "Gopal", "ic_number": "900101700002", "village_id": village.ID,
	})
	mustStatus(t, w, http.StatusBadRequest)

	// Keeping one's own IC is not a collision
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/voters/%d", voter.ID), map[string]any{
		"name": "Gopal Renamed", "ic_number": "900101700001", "village_id": village.ID,
	})
	mustStatus(t, w, http.StatusOK)

	var reloaded domain.Voter
	require.NoError(t, conn.First(&reloaded, voter.ID).Error)
	assert.Equal(t, "Gopal Renamed", reloaded.Name)

	w = doJSON(t, r, http.MethodPut, "/api/voters/9999", map[string]any{
		"name": "X", "ic_number": "900101700009", "village_id": village.ID,
	})
	mustStatus(t, w, http.StatusNotFound)
}

func TestVotedVoterIsImmutable(t *testing.T) {
	r, conn := newTestRouter(t)

	village := domain.Village{Name: "Kampung J"}
	require.NoError(t, conn.Create(&village).Error)
	party := domain.Party{Name: "Lock Party", Color: "#101010"}
	require.NoError(t, conn.Create(&party).Error)
	now := time.Now()
	voter := domain.Voter{
		Name: "Ismail", ICNumber: "900101800001", VillageID: village.ID,
		HasVoted: true, VotedAt: &now, PartyVotedID: &party.ID,
	}
	require.NoError(t, conn.Create(&voter).Error)

	// Edit is a policy violation after voting
	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/voters/%d", voter.ID), map[string]any{
		"name": "Changed", "ic_number": "900101800001", "village_id": village.ID,
	})
	mustStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, w.Body.String(), "already voted")

	// So is delete
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/voters/%d", voter.ID), nil)
	mustStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, w.Body.String(), "already voted")

	// A pre-vote voter still deletes fine
	fresh := domain.Voter{Name: "Jaya", ICNumber: "900101800002", VillageID: village.ID}
	require.NoError(t, conn.Create(&fresh).Error)
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/voters/%d", fresh.ID), nil)
	mustStatus(t, w, http.StatusOK)
}
