package database

import (
	"github.com/polleyhq/polley/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.Poll{},
	&models.PollOption{},
	&models.PollView{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(
		append(
			AutoMaintainRange,
			&models.Vote{},
		)...,
	); err != nil {
		return err
	}

	return nil
}
