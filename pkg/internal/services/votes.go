package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/polleyhq/polley/pkg/internal/database"
	"github.com/polleyhq/polley/pkg/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CastVote runs the whole admission chain: poll lifecycle, auth policy, option
// membership, then the append itself. Deduplication is not a check-then-act
// here; the unique index on the votes table decides the race and the loser
// gets ErrAlreadyVoted.
func CastVote(poll models.Poll, optionId uint, voter models.Voter) (models.Vote, error) {
	var vote models.Vote

	if poll.Status != models.PollStatusActive {
		return vote, ErrPollClosed
	}
	if !poll.IsVotable() {
		return vote, ErrPollExpired
	}
	if poll.RequireAuth && !voter.Authenticated() {
		return vote, ErrAuthRequired
	}

	var option models.PollOption
	if err := database.C.Where("id = ? AND poll_id = ?", optionId, poll.ID).
		First(&option).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return vote, ErrInvalidOption
		}
		return vote, fmt.Errorf("unable to check poll option: %v", err)
	}

	dedupKey := ""
	if poll.AllowMultiple {
		// Per-option dedup: same identity may vote once per distinct option.
		dedupKey = fmt.Sprintf("option#%d", option.ID)
	}

	vote = models.Vote{
		ID:            uuid.NewString(),
		PollID:        poll.ID,
		OptionID:      option.ID,
		VoterIdentity: voter.Identity(),
		DedupKey:      dedupKey,
		UserAgent:     voter.UserAgent,
	}
	if voter.Authenticated() {
		vote.UserID = &voter.UserID
	} else {
		vote.VoterIP = &voter.IP
	}
	if len(voter.Audit) > 0 {
		vote.Audit = datatypes.JSONMap(voter.Audit)
	}

	if err := database.C.Create(&vote).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return vote, ErrAlreadyVoted
		}
		return vote, fmt.Errorf("unable to record vote: %v", err)
	}

	InvalidatePollMetric(poll)

	return vote, nil
}

// HasVoted is the coarse signal the UI uses to suppress the voting form; it
// deliberately ignores the per-option nuance of multi-select polls.
func HasVoted(pollId uint, identity string) (bool, error) {
	var count int64
	if err := withRetry(func() error {
		return database.C.Model(&models.Vote{}).
			Where("poll_id = ? AND voter_identity = ?", pollId, identity).
			Count(&count).Error
	}); err != nil {
		return false, fmt.Errorf("unable to check vote status: %v", err)
	}
	return count > 0, nil
}

func FindVotesByVoter(pollId uint, identity string) ([]models.Vote, error) {
	var votes []models.Vote
	if err := database.C.
		Where("poll_id = ? AND voter_identity = ?", pollId, identity).
		Order("created_at ASC").
		Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("unable to list votes: %v", err)
	}
	return votes, nil
}

func CountVotesForPoll(pollId uint) (int64, error) {
	var count int64
	if err := database.C.Model(&models.Vote{}).
		Where("poll_id = ?", pollId).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("unable to count votes: %v", err)
	}
	return count, nil
}

func CountVotesForOption(pollId, optionId uint) (int64, error) {
	var count int64
	if err := database.C.Model(&models.Vote{}).
		Where("poll_id = ? AND option_id = ?", pollId, optionId).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("unable to count votes: %v", err)
	}
	return count, nil
}

func CountDistinctVoters(pollId uint) (int64, error) {
	var count int64
	if err := database.C.Model(&models.Vote{}).
		Where("poll_id = ?", pollId).
		Distinct("voter_identity").
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("unable to count voters: %v", err)
	}
	return count, nil
}
