package api

import (
	"github.com/gofiber/fiber/v2"
)

func MapAPIs(app *fiber.App, baseURL string) {
	api := app.Group(baseURL).Name("API")
	{
		polls := api.Group("/polls").Name("Polls API")
		{
			polls.Get("/", listPolls)
			polls.Post("/", createPoll)
			polls.Get("/:pollId", getPoll)
			polls.Post("/:pollId/publish", publishPoll)
			polls.Post("/:pollId/close", closePoll)
			polls.Delete("/:pollId", deletePoll)
			polls.Post("/:pollId/vote", castVote)
			polls.Get("/:pollId/voted", getVoteStatus)
		}
	}
}
