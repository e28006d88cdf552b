package services

import (
	"sync"
	"testing"
	"time"

	"github.com/polleyhq/polley/pkg/internal/models"
	"github.com/polleyhq/polley/pkg/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userVoter(id string) models.Voter {
	return models.Voter{UserID: id, UserAgent: "go-test"}
}

func anonVoter(ip string) models.Voter {
	return models.Voter{IP: ip, UserAgent: "go-test"}
}

func TestCastVoteBasic(t *testing.T) {
	testutil.NewDatabase(t)

	poll := mustCreatePoll(t, models.Poll{Title: "Basic"}, "A", "B")

	vote, err := CastVote(poll, poll.Options[0].ID, anonVoter("203.0.113.7"))
	require.NoError(t, err)
	assert.NotEmpty(t, vote.ID)
	assert.Equal(t, "203.0.113.7", vote.VoterIdentity)
	require.NotNil(t, vote.VoterIP)
	assert.Nil(t, vote.UserID)

	total, err := CountVotesForPoll(poll.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	count, err := CountVotesForOption(poll.ID, poll.Options[0].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestCastVoteDuplicateRejected(t *testing.T) {
	testutil.NewDatabase(t)

	poll := mustCreatePoll(t, models.Poll{Title: "Single vote"}, "A", "B")
	voter := userVoter("user-1")

	_, err := CastVote(poll, poll.Options[0].ID, voter)
	require.NoError(t, err)

	// A different option does not help on a single-vote poll.
	_, err = CastVote(poll, poll.Options[1].ID, voter)
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	total, err := CountVotesForPoll(poll.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestCastVoteMultiSelect(t *testing.T) {
	testutil.NewDatabase(t)

	poll := mustCreatePoll(t, models.Poll{Title: "Multi", AllowMultiple: true}, "A", "B")
	voter := userVoter("user-1")

	_, err := CastVote(poll, poll.Options[0].ID, voter)
	require.NoError(t, err)
	_, err = CastVote(poll, poll.Options[1].ID, voter)
	require.NoError(t, err)

	// One vote per distinct option.
	_, err = CastVote(poll, poll.Options[0].ID, voter)
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	total, err := CountVotesForPoll(poll.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	voters, err := CountDistinctVoters(poll.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, voters)
}

func TestCastVoteInvalidOption(t *testing.T) {
	testutil.NewDatabase(t)

	poll := mustCreatePoll(t, models.Poll{Title: "Mine"}, "A", "B")
	other := mustCreatePoll(t, models.Poll{Title: "Theirs"}, "C", "D")

	_, err := CastVote(poll, other.Options[0].ID, userVoter("user-1"))
	assert.ErrorIs(t, err, ErrInvalidOption)

	total, err := CountVotesForPoll(poll.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCastVoteRequireAuth(t *testing.T) {
	testutil.NewDatabase(t)

	poll := mustCreatePoll(t, models.Poll{Title: "Members only", RequireAuth: true}, "A", "B")

	_, err := CastVote(poll, poll.Options[0].ID, anonVoter("203.0.113.7"))
	assert.ErrorIs(t, err, ErrAuthRequired)

	_, err = CastVote(poll, poll.Options[0].ID, userVoter("user-1"))
	assert.NoError(t, err)
}

func TestCastVoteLifecycleChecks(t *testing.T) {
	testutil.NewDatabase(t)

	closed := mustCreatePoll(t, models.Poll{Title: "Closed", Status: models.PollStatusClosed}, "A", "B")
	_, err := CastVote(closed, closed.Options[0].ID, userVoter("user-1"))
	assert.ErrorIs(t, err, ErrPollClosed)

	draft := mustCreatePoll(t, models.Poll{Title: "Draft", Status: models.PollStatusDraft}, "A", "B")
	_, err = CastVote(draft, draft.Options[0].ID, userVoter("user-1"))
	assert.ErrorIs(t, err, ErrPollClosed)

	past := time.Now().Add(-time.Minute)
	expired := mustCreatePoll(t, models.Poll{Title: "Expired", ExpiresAt: &past}, "A", "B")
	assert.Equal(t, models.PollStatusActive, expired.Status)
	_, err = CastVote(expired, expired.Options[0].ID, userVoter("user-1"))
	assert.ErrorIs(t, err, ErrPollExpired)
}

func TestAnonymousUnknownIdentityCollapses(t *testing.T) {
	testutil.NewDatabase(t)

	poll := mustCreatePoll(t, models.Poll{Title: "Headerless"}, "A", "B")

	// Two different header-less browsers resolve to the same "unknown"
	// identity and block each other. Intentional, not a bug.
	_, err := CastVote(poll, poll.Options[0].ID, anonVoter("unknown"))
	require.NoError(t, err)

	_, err = CastVote(poll, poll.Options[1].ID, anonVoter("unknown"))
	assert.ErrorIs(t, err, ErrAlreadyVoted)
}

func TestConcurrentDuplicateVotes(t *testing.T) {
	testutil.NewDatabase(t)

	poll := mustCreatePoll(t, models.Poll{Title: "Race"}, "A", "B")
	voter := userVoter("user-1")

	const attempts = 8
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := CastVote(poll, poll.Options[0].ID, voter)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		default:
			require.ErrorIs(t, err, ErrAlreadyVoted)
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)

	total, err := CountVotesForPoll(poll.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestHasVoted(t *testing.T) {
	testutil.NewDatabase(t)

	poll := mustCreatePoll(t, models.Poll{Title: "Status check", AllowMultiple: true}, "A", "B")
	voter := userVoter("user-1")

	voted, err := HasVoted(poll.ID, voter.Identity())
	require.NoError(t, err)
	assert.False(t, voted)

	_, err = CastVote(poll, poll.Options[0].ID, voter)
	require.NoError(t, err)

	voted, err = HasVoted(poll.ID, voter.Identity())
	require.NoError(t, err)
	assert.True(t, voted)

	voted, err = HasVoted(poll.ID, "somebody-else")
	require.NoError(t, err)
	assert.False(t, voted)
}

func TestFindVotesByVoter(t *testing.T) {
	testutil.NewDatabase(t)

	poll := mustCreatePoll(t, models.Poll{Title: "History", AllowMultiple: true}, "A", "B", "C")
	voter := userVoter("user-1")

	for _, option := range poll.Options {
		_, err := CastVote(poll, option.ID, voter)
		require.NoError(t, err)
	}
	_, err := CastVote(poll, poll.Options[0].ID, userVoter("user-2"))
	require.NoError(t, err)

	votes, err := FindVotesByVoter(poll.ID, voter.Identity())
	require.NoError(t, err)
	require.Len(t, votes, 3)
	for _, vote := range votes {
		assert.Equal(t, voter.Identity(), vote.VoterIdentity)
		assert.Equal(t, poll.ID, vote.PollID)
	}
}
