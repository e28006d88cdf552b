package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/polleyhq/polley/pkg/internal/http/exts"
	"github.com/polleyhq/polley/pkg/internal/models"
	"github.com/polleyhq/polley/pkg/internal/services"
)

func listPolls(c *fiber.Ctx) error {
	page := c.QueryInt("page", 0)
	pageSize := c.QueryInt("pageSize", 20)

	polls, err := services.ListPublicPolls(page, pageSize, c.Query("order"))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"polls": polls})
}

func getPoll(c *fiber.Ctx) error {
	pollId, _ := c.ParamsInt("pollId")

	poll, err := services.GetPollResults(uint(pollId))
	if err != nil {
		return mapServiceError(err)
	}

	services.AddPollView(poll, ResolveVoter(c).Identity())

	return c.JSON(fiber.Map{"poll": poll})
}

func createPoll(c *fiber.Ctx) error {
	user, authenticated := c.Locals("user").(models.Account)
	if !authenticated {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var data struct {
		Title         string     `json:"title" validate:"required,max=256"`
		Description   string     `json:"description" validate:"max=4096"`
		Options       []string   `json:"options" validate:"required,min=2,max=10,dive,required,max=256"`
		IsPublic      *bool      `json:"isPublic"`
		AllowMultiple bool       `json:"allowMultiple"`
		RequireAuth   bool       `json:"requireAuth"`
		ExpiresAt     *time.Time `json:"expiresAt"`
		Draft         bool       `json:"draft"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	isPublic := true
	if data.IsPublic != nil {
		isPublic = *data.IsPublic
	}
	status := models.PollStatusActive
	if data.Draft {
		status = models.PollStatusDraft
	}

	poll := models.Poll{
		Title:         data.Title,
		Description:   data.Description,
		Status:        status,
		IsPublic:      isPublic,
		AllowMultiple: data.AllowMultiple,
		RequireAuth:   data.RequireAuth,
		ExpiresAt:     data.ExpiresAt,
		CreatedBy:     &user.ID,
	}

	poll, err := services.NewPoll(poll, data.Options)
	if err != nil {
		return mapServiceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"pollId": poll.ID})
}

// Lifecycle and deletion endpoints only answer to the poll's owner; anyone
// else gets the same 404 as a missing poll.
func requirePollOwner(c *fiber.Ctx) (models.Poll, error) {
	user, authenticated := c.Locals("user").(models.Account)
	if !authenticated {
		return models.Poll{}, fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	pollId, _ := c.ParamsInt("pollId")
	poll, err := services.GetPoll(uint(pollId))
	if err != nil {
		return poll, mapServiceError(err)
	}
	if poll.CreatedBy == nil || *poll.CreatedBy != user.ID {
		return poll, fiber.NewError(fiber.StatusNotFound, services.ErrPollNotFound.Error())
	}

	return poll, nil
}

func publishPoll(c *fiber.Ctx) error {
	poll, err := requirePollOwner(c)
	if err != nil {
		return err
	}

	if poll, err = services.PublishPoll(poll); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(poll)
}

func closePoll(c *fiber.Ctx) error {
	poll, err := requirePollOwner(c)
	if err != nil {
		return err
	}

	if poll, err = services.ClosePoll(poll); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(poll)
}

func deletePoll(c *fiber.Ctx) error {
	poll, err := requirePollOwner(c)
	if err != nil {
		return err
	}

	if err := services.DeletePoll(poll); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(poll)
}
