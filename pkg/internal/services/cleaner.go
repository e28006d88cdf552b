package services

import (
	"time"

	"github.com/polleyhq/polley/pkg/internal/database"
	"github.com/polleyhq/polley/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

const deletedPollRetention = 30 * 24 * time.Hour

// DoAutoDatabaseCleanup converges stored state with what the read-time checks
// already enforce: expired polls get their closed status persisted, and polls
// that sat in the soft-deleted state past the retention window are purged for
// good (options and votes follow via the FK cascade).
func DoAutoDatabaseCleanup() {
	log.Debug().Msg("Now cleaning up entire database...")

	expired := database.C.Model(&models.Poll{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.PollStatusActive, time.Now()).
		Update("status", models.PollStatusClosed)
	if expired.Error != nil {
		log.Error().Err(expired.Error).Msg("An error occurred when closing expired polls...")
	} else if expired.RowsAffected > 0 {
		log.Info().Int64("count", expired.RowsAffected).Msg("Closed expired polls.")
	}

	deadline := time.Now().Add(-deletedPollRetention)
	purged := database.C.Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", deadline).
		Delete(&models.Poll{})
	if purged.Error != nil {
		log.Error().Err(purged.Error).Msg("An error occurred when purging deleted polls...")
	} else if purged.RowsAffected > 0 {
		log.Info().Int64("count", purged.RowsAffected).Msg("Purged deleted polls.")
	}
}
