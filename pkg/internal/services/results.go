package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	localCache "github.com/polleyhq/polley/pkg/internal/cache"
	"github.com/polleyhq/polley/pkg/internal/database"
	"github.com/polleyhq/polley/pkg/internal/models"
	"github.com/samber/lo"
)

const pollMetricCacheTTL = 15 * time.Second

func pollMetricCacheKey(id uint) string {
	return fmt.Sprintf("poll-metric#%d", id)
}

func pollCacheTag(id uint) string {
	return fmt.Sprintf("poll#%d", id)
}

// GetPollResults assembles the point-in-time snapshot the UI renders: the poll
// plus its computed metric.
func GetPollResults(id uint) (models.Poll, error) {
	poll, err := GetPoll(id)
	if err != nil {
		return poll, err
	}

	metric, err := GetPollMetric(poll)
	if err != nil {
		return poll, err
	}
	poll.Metric = &metric

	return poll, nil
}

// GetPollMetric serves the metric from the process-local cache when it can;
// snapshots are not linearizable with in-flight votes and do not need to be.
func GetPollMetric(poll models.Poll) (models.PollMetric, error) {
	cacheManager := cache.New[any](localCache.S)
	marshal := marshaler.New(cacheManager)
	ctx := context.Background()

	if val, err := marshal.Get(ctx, pollMetricCacheKey(poll.ID), new(models.PollMetric)); err == nil {
		return *val.(*models.PollMetric), nil
	}

	metric, err := computePollMetric(poll)
	if err != nil {
		return metric, err
	}

	_ = marshal.Set(
		ctx,
		pollMetricCacheKey(poll.ID),
		metric,
		store.WithExpiration(pollMetricCacheTTL),
		store.WithTags([]string{pollCacheTag(poll.ID)}),
	)

	return metric, nil
}

func InvalidatePollMetric(poll models.Poll) {
	cacheManager := cache.New[any](localCache.S)
	_ = cacheManager.Invalidate(
		context.Background(),
		store.WithInvalidateTags([]string{pollCacheTag(poll.ID)}),
	)
}

func computePollMetric(poll models.Poll) (models.PollMetric, error) {
	var metric models.PollMetric

	options := poll.Options
	if len(options) == 0 {
		if err := database.C.Where("poll_id = ?", poll.ID).
			Order("position ASC").Find(&options).Error; err != nil {
			return metric, fmt.Errorf("unable to list poll options: %v", err)
		}
	}

	type optionCount struct {
		OptionID uint
		Total    int64
	}
	var counts []optionCount
	if err := withRetry(func() error {
		return database.C.Model(&models.Vote{}).
			Select("option_id, COUNT(*) AS total").
			Where("poll_id = ?", poll.ID).
			Group("option_id").
			Scan(&counts).Error
	}); err != nil {
		return metric, fmt.Errorf("unable to count votes: %v", err)
	}

	countByOption := lo.SliceToMap(counts, func(item optionCount) (uint, int64) {
		return item.OptionID, item.Total
	})
	totalVotes := lo.Sum(lo.Values(countByOption))

	var uniqueVoters int64
	if err := withRetry(func() error {
		return database.C.Model(&models.Vote{}).
			Where("poll_id = ?", poll.ID).
			Distinct("voter_identity").
			Count(&uniqueVoters).Error
	}); err != nil {
		return metric, fmt.Errorf("unable to count voters: %v", err)
	}

	metric = models.PollMetric{
		TotalVotes:   totalVotes,
		UniqueVoters: uniqueVoters,
		ByOptions: lo.Map(options, func(option models.PollOption, _ int) models.OptionResult {
			count := countByOption[option.ID]
			var percentage float64
			if totalVotes > 0 {
				percentage = math.Round(float64(count)/float64(totalVotes)*1000) / 10
			}
			return models.OptionResult{
				OptionID:       option.ID,
				Text:           option.Text,
				Position:       option.Position,
				VoteCount:      count,
				VotePercentage: percentage,
			}
		}),
	}

	return metric, nil
}
