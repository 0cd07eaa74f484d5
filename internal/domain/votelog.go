package domain

import "time"

// VoteLog Model. Append-only audit record, one row per successful cast,
// never updated or deleted by the application.
type VoteLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                      // Primary key
	VoterID   uint      `gorm:"not null;index" json:"voter_id"`            // Voter who cast the vote
	PartyID   uint      `gorm:"not null;index" json:"party_id"`            // Party voted for
	VillageID uint      `gorm:"not null;index" json:"village_id"`          // Village of the voter at cast time
	VotedAt   time.Time `gorm:"autoCreateTime;index" json:"voted_at"`      // Timestamp of the cast
	IPAddress string    `gorm:"size:45" json:"ip_address"`                 // Source IP of the request
	UserAgent string    `gorm:"size:512" json:"user_agent"`                // Client user agent string
}
