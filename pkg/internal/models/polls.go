package models

import (
	"time"
)

type PollStatus = string

// Lifecycle is one-directional: draft -> active -> closed.
const (
	PollStatusDraft  PollStatus = "draft"
	PollStatusActive PollStatus = "active"
	PollStatusClosed PollStatus = "closed"
)

type Poll struct {
	BaseModel

	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        PollStatus `json:"status" gorm:"index"`
	IsPublic      bool       `json:"is_public"`
	AllowMultiple bool       `json:"allow_multiple"`
	RequireAuth   bool       `json:"require_auth"`
	ExpiresAt     *time.Time `json:"expires_at"`
	CreatedBy     *string    `json:"created_by" gorm:"index"`

	TotalViews int64 `json:"total_views"`

	Options []PollOption `json:"options" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Votes   []Vote       `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	Metric *PollMetric `json:"metric,omitempty" gorm:"-"`
}

// IsVotable is a read-time check; a poll past its expiry behaves as closed
// even while the stored status is still active.
func (v Poll) IsVotable() bool {
	if v.Status != PollStatusActive {
		return false
	}
	return v.ExpiresAt == nil || v.ExpiresAt.After(time.Now())
}

type PollOption struct {
	BaseModel

	PollID   uint   `json:"poll_id" gorm:"uniqueIndex:idx_poll_option_position"`
	Text     string `json:"text"`
	Position int    `json:"position" gorm:"uniqueIndex:idx_poll_option_position"`
}

// PollMetric is computed at query time and never stored.
type PollMetric struct {
	TotalVotes   int64          `json:"total_votes"`
	UniqueVoters int64          `json:"unique_voters"`
	ByOptions    []OptionResult `json:"by_options"`
}

type OptionResult struct {
	OptionID       uint    `json:"option_id"`
	Text           string  `json:"text"`
	Position       int     `json:"position"`
	VoteCount      int64   `json:"vote_count"`
	VotePercentage float64 `json:"vote_percentage"`
}

type PollView struct {
	BaseModel

	PollID         uint   `json:"poll_id" gorm:"index"`
	ViewerIdentity string `json:"viewer_identity"`
}
