package oauthserver

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/flaim-app/auth-broker/core"
)

// EnforceRawCredentialsRateLimit implements §4.2.8: ≤ 200 calls/user/UTC-day
// before a ?raw=true credential read is allowed to proceed. Exported so
// platform/* read handlers can call it directly in front of their raw reads.
func (h *Handler) EnforceRawCredentialsRateLimit(c *fiber.Ctx, userID string) bool {
	count, err := h.store.IncrementRawCredentialsRateLimit(c.Context(), userID)
	if err != nil {
		// The increment failing does not block the request — see §4.5
		// incrementRateLimit: "failure does not block the request".
		log.Printf("[OAuth] rate limit increment failed, allowing request: %v", err)
		return true
	}

	remaining := core.RawCredentialsDailyLimit - count
	if remaining < 0 {
		remaining = 0
	}
	resetAt := nextUTCMidnight()

	c.Set("X-RateLimit-Limit", strconv.Itoa(core.RawCredentialsDailyLimit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

	if count > core.RawCredentialsDailyLimit {
		retryAfter := int(time.Until(resetAt).Seconds())
		c.Set("Retry-After", strconv.Itoa(retryAfter))
		core.JSONError(c, fiber.StatusTooManyRequests, "Rate limit exceeded")
		return false
	}

	return true
}

func nextUTCMidnight() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}
