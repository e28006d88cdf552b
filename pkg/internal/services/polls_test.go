package services

import (
	"testing"
	"time"

	"github.com/polleyhq/polley/pkg/internal/models"
	"github.com/polleyhq/polley/pkg/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreatePoll(t *testing.T, poll models.Poll, options ...string) models.Poll {
	t.Helper()
	if len(options) == 0 {
		options = []string{"Option A", "Option B"}
	}
	poll, err := NewPoll(poll, options)
	require.NoError(t, err)
	return poll
}

func TestNewPollValidation(t *testing.T) {
	testutil.NewDatabase(t)

	_, err := NewPoll(models.Poll{}, []string{"A", "B"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewPoll(models.Poll{Title: "Lunch"}, []string{"A"})
	assert.ErrorIs(t, err, ErrValidation)

	tooMany := make([]string, MaxPollOptions+1)
	for idx := range tooMany {
		tooMany[idx] = "X"
	}
	_, err = NewPoll(models.Poll{Title: "Lunch"}, tooMany)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewPoll(models.Poll{Title: "Lunch"}, []string{"A", ""})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewPollDefaults(t *testing.T) {
	testutil.NewDatabase(t)

	poll := mustCreatePoll(t, models.Poll{Title: "Lunch"}, "Pizza", "Sushi", "Ramen")
	assert.Equal(t, models.PollStatusActive, poll.Status)

	poll, err := GetPoll(poll.ID)
	require.NoError(t, err)
	require.Len(t, poll.Options, 3)
	for idx, option := range poll.Options {
		assert.Equal(t, idx, option.Position)
		assert.Equal(t, poll.ID, option.PollID)
	}
}

func TestGetPollNotFound(t *testing.T) {
	testutil.NewDatabase(t)

	_, err := GetPoll(42)
	assert.ErrorIs(t, err, ErrPollNotFound)
}

func TestPollLifecycle(t *testing.T) {
	testutil.NewDatabase(t)

	poll := mustCreatePoll(t, models.Poll{Title: "Draft first", Status: models.PollStatusDraft})
	assert.False(t, poll.IsVotable())

	poll, err := PublishPoll(poll)
	require.NoError(t, err)
	assert.Equal(t, models.PollStatusActive, poll.Status)
	assert.True(t, poll.IsVotable())

	poll, err = ClosePoll(poll)
	require.NoError(t, err)
	assert.Equal(t, models.PollStatusClosed, poll.Status)
	assert.False(t, poll.IsVotable())

	// Closed is terminal.
	_, err = PublishPoll(poll)
	assert.ErrorIs(t, err, ErrValidation)

	// Closing twice stays a no-op.
	poll, err = ClosePoll(poll)
	require.NoError(t, err)
	assert.Equal(t, models.PollStatusClosed, poll.Status)
}

func TestIsVotableExpiry(t *testing.T) {
	testutil.NewDatabase(t)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	expired := mustCreatePoll(t, models.Poll{Title: "Too late", ExpiresAt: &past})
	assert.Equal(t, models.PollStatusActive, expired.Status)
	assert.False(t, expired.IsVotable())

	open := mustCreatePoll(t, models.Poll{Title: "Still open", ExpiresAt: &future})
	assert.True(t, open.IsVotable())
}

func TestListPublicPolls(t *testing.T) {
	testutil.NewDatabase(t)

	mustCreatePoll(t, models.Poll{Title: "Public one", IsPublic: true})
	mustCreatePoll(t, models.Poll{Title: "Public two", IsPublic: true})
	mustCreatePoll(t, models.Poll{Title: "Private", IsPublic: false})
	mustCreatePoll(t, models.Poll{Title: "Hidden draft", IsPublic: true, Status: models.PollStatusDraft})

	polls, err := ListPublicPolls(0, 20, "")
	require.NoError(t, err)
	require.Len(t, polls, 2)
	for _, poll := range polls {
		assert.True(t, poll.IsPublic)
		assert.Equal(t, models.PollStatusActive, poll.Status)
		require.NotNil(t, poll.Metric)
		assert.NotEmpty(t, poll.Options)
	}

	polls, err = ListPublicPolls(0, 1, "")
	require.NoError(t, err)
	assert.Len(t, polls, 1)

	polls, err = ListPublicPolls(5, 20, "")
	require.NoError(t, err)
	assert.Empty(t, polls)
}

func TestDeletePollHidesIt(t *testing.T) {
	testutil.NewDatabase(t)

	poll := mustCreatePoll(t, models.Poll{Title: "Short lived", IsPublic: true})
	require.NoError(t, DeletePoll(poll))

	_, err := GetPoll(poll.ID)
	assert.ErrorIs(t, err, ErrPollNotFound)

	polls, err := ListPublicPolls(0, 20, "")
	require.NoError(t, err)
	assert.Empty(t, polls)
}
