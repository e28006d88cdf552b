package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/polleyhq/polley/pkg/internal/http/exts"
	"github.com/polleyhq/polley/pkg/internal/services"
)

func castVote(c *fiber.Ctx) error {
	pollId, _ := c.ParamsInt("pollId")

	var data struct {
		OptionID uint `json:"optionId" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	poll, err := services.GetPoll(uint(pollId))
	if err != nil {
		return mapServiceError(err)
	}

	vote, err := services.CastVote(poll, data.OptionID, ResolveVoter(c))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"voteId": vote.ID, "success": true})
}

func getVoteStatus(c *fiber.Ctx) error {
	pollId, _ := c.ParamsInt("pollId")

	if _, err := services.GetPoll(uint(pollId)); err != nil {
		return mapServiceError(err)
	}

	voted, err := services.HasVoted(uint(pollId), ResolveVoter(c).Identity())
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"hasVoted": voted})
}
