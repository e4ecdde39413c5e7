package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxQueryLogLength = 2048

// Logger emits one structured line per request. 5xx responses log at error,
// 4xx at warn and everything else at info.
func Logger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			// let the app error handler write the response so the status is final
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		ev := requestEvent(status).
			Str("request_id", requestID(c)).
			Str("method", c.Method()).
			Str("path", routePath(c)).
			Str("remote_ip", c.IP()).
			Str("query", truncate(string(c.Request().URI().QueryString()), maxQueryLogLength)).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int("bytes_out", len(c.Response().Body()))
		if id, err := CurrentIdentity(c); err == nil {
			ev = ev.Str("user_id", id.ID.String())
		}
		if chainErr != nil {
			ev = ev.Err(chainErr)
		}
		ev.Msg("request")
		return nil
	}
}

func requestEvent(status int) *zerolog.Event {
	switch {
	case status >= fiber.StatusInternalServerError:
		return log.Error()
	case status >= fiber.StatusBadRequest:
		return log.Warn()
	default:
		return log.Info()
	}
}

func requestID(c *fiber.Ctx) string {
	if rid, ok := c.Locals("requestid").(string); ok {
		return rid
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

// routePath prefers the registered route pattern to keep label and log
// cardinality bounded.
func routePath(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
		return r.Path
	}
	return c.Path()
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
