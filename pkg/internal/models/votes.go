package models

import (
	"time"

	"gorm.io/datatypes"
)

// Vote rows are append-only; they are never updated and only removed when the
// parent poll is hard-deleted. The unique index over (poll_id, voter_identity,
// dedup_key) is the duplicate-vote guard at the storage level: dedup_key stays
// empty on single-vote polls (one vote per poll) and carries the option id on
// multi-select polls (one vote per option). Concurrent duplicate writers lose
// the insert race instead of both succeeding.
type Vote struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	PollID        uint   `json:"poll_id" gorm:"uniqueIndex:idx_vote_dedup"`
	OptionID      uint   `json:"option_id" gorm:"index"`
	VoterIdentity string `json:"voter_identity" gorm:"uniqueIndex:idx_vote_dedup"`
	DedupKey      string `json:"-" gorm:"uniqueIndex:idx_vote_dedup"`

	UserID    *string           `json:"user_id"`
	VoterIP   *string           `json:"voter_ip"`
	UserAgent string            `json:"user_agent"`
	Audit     datatypes.JSONMap `json:"audit,omitempty"`
}

// Voter is the resolved identity behind a vote request: the account id for
// authenticated callers, the client address otherwise. Never both at once.
type Voter struct {
	UserID    string
	IP        string
	UserAgent string
	Audit     map[string]any
}

func (v Voter) Authenticated() bool {
	return len(v.UserID) > 0
}

func (v Voter) Identity() string {
	if v.Authenticated() {
		return v.UserID
	}
	return v.IP
}
