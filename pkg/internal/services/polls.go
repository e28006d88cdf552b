package services

import (
	"errors"
	"fmt"

	"github.com/polleyhq/polley/pkg/internal/database"
	"github.com/polleyhq/polley/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

const (
	MinPollOptions = 2
	MaxPollOptions = 10
)

func NewPoll(poll models.Poll, optionTexts []string) (models.Poll, error) {
	if len(poll.Title) == 0 {
		return poll, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(optionTexts) < MinPollOptions || len(optionTexts) > MaxPollOptions {
		return poll, fmt.Errorf(
			"%w: polls need between %d and %d options",
			ErrValidation, MinPollOptions, MaxPollOptions,
		)
	}
	for _, text := range optionTexts {
		if len(text) == 0 {
			return poll, fmt.Errorf("%w: option text cannot be empty", ErrValidation)
		}
	}

	if len(poll.Status) == 0 {
		poll.Status = models.PollStatusActive
	}
	poll.Options = lo.Map(optionTexts, func(text string, idx int) models.PollOption {
		return models.PollOption{Text: text, Position: idx}
	})

	if err := database.C.Create(&poll).Error; err != nil {
		return poll, fmt.Errorf("unable to create poll: %v", err)
	}

	return poll, nil
}

func GetPoll(id uint) (models.Poll, error) {
	var poll models.Poll
	if err := database.C.
		Preload("Options", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Where("id = ?", id).First(&poll).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll, ErrPollNotFound
		}
		return poll, fmt.Errorf("unable to get poll: %v", err)
	}
	return poll, nil
}

func ListPublicPolls(page, pageSize int, order string) ([]models.Poll, error) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	tx := database.C.Where("is_public = ? AND status = ?", true, models.PollStatusActive)
	switch order {
	case "popular":
		tx = tx.Order("total_views DESC")
	default:
		tx = tx.Order("created_at DESC")
	}

	var polls []models.Poll
	if err := tx.
		Preload("Options", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Offset(page * pageSize).Limit(pageSize).
		Find(&polls).Error; err != nil {
		return nil, fmt.Errorf("unable to list polls: %v", err)
	}

	for idx := range polls {
		metric, err := GetPollMetric(polls[idx])
		if err != nil {
			return nil, err
		}
		polls[idx].Metric = &metric
	}

	return polls, nil
}

func PublishPoll(poll models.Poll) (models.Poll, error) {
	if poll.Status != models.PollStatusDraft {
		return poll, fmt.Errorf("%w: only draft polls can be published", ErrValidation)
	}

	poll.Status = models.PollStatusActive
	if err := database.C.Model(&poll).Update("status", models.PollStatusActive).Error; err != nil {
		return poll, fmt.Errorf("unable to publish poll: %v", err)
	}

	return poll, nil
}

func ClosePoll(poll models.Poll) (models.Poll, error) {
	if poll.Status == models.PollStatusClosed {
		return poll, nil
	}

	poll.Status = models.PollStatusClosed
	if err := database.C.Model(&poll).Update("status", models.PollStatusClosed).Error; err != nil {
		return poll, fmt.Errorf("unable to close poll: %v", err)
	}

	return poll, nil
}

// DeletePoll soft-deletes; options and votes go away when the cleaner purges
// the row for good and the FK cascade kicks in.
func DeletePoll(poll models.Poll) error {
	if err := database.C.Delete(&poll).Error; err != nil {
		return fmt.Errorf("unable to delete poll: %v", err)
	}
	InvalidatePollMetric(poll)
	return nil
}
