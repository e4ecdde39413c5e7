package handlers

import (
	"errors"

	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/anjiri1684/tutor_marketplace/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	codeUnauthorized      = "unauthorized"
	codeForbidden         = "forbidden"
	codeNotFound          = "not_found"
	codeInvalidArgument   = "invalid_argument"
	codeConflict          = "conflict"
	codeInvalidTransition = "invalid_transition"
	codeInternal          = "internal"
)

func fail(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg, "code": code})
}

// statusFor maps a service error kind to its HTTP status and stable code.
func statusFor(kind services.Kind) (int, string) {
	switch kind {
	case services.KindAuthenticationRequired:
		return fiber.StatusUnauthorized, codeUnauthorized
	case services.KindForbidden:
		return fiber.StatusForbidden, codeForbidden
	case services.KindNotFound:
		return fiber.StatusNotFound, codeNotFound
	case services.KindInvalidArgument:
		return fiber.StatusBadRequest, codeInvalidArgument
	case services.KindConflict:
		return fiber.StatusConflict, codeConflict
	case services.KindInvalidTransition:
		return fiber.StatusConflict, codeInvalidTransition
	}
	return fiber.StatusInternalServerError, codeInternal
}

// serviceError writes err as a {error, code} response. Internal errors are
// logged and answered with a generic message.
func serviceError(c *fiber.Ctx, err error) error {
	status, code := statusFor(services.KindOf(err))
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request failed")
		return fail(c, status, code, "Internal server error")
	}
	return fail(c, status, code, err.Error())
}

// ErrorHandler is the app-wide fallback for errors returned up the handler
// chain, such as unmatched routes and recovered panics.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		return serviceError(c, err)
	}
	code := codeInternal
	switch fe.Code {
	case fiber.StatusBadRequest:
		code = codeInvalidArgument
	case fiber.StatusUnauthorized:
		code = codeUnauthorized
	case fiber.StatusForbidden:
		code = codeForbidden
	case fiber.StatusNotFound:
		code = codeNotFound
	case fiber.StatusConflict:
		code = codeConflict
	case fiber.StatusMethodNotAllowed:
		code = "method_not_allowed"
	case fiber.StatusUpgradeRequired:
		code = "upgrade_required"
	case fiber.StatusTooManyRequests:
		code = "too_many_requests"
	case fiber.StatusRequestEntityTooLarge:
		code = "payload_too_large"
	}
	if fe.Code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	}
	return fail(c, fe.Code, code, fe.Message)
}

// parseBody decodes and validates the request body into req.
func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return services.InvalidArgument("Cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return services.InvalidArgument(verrs[0].Error())
		}
		return services.InvalidArgument(err.Error())
	}
	return nil
}

func identity(c *fiber.Ctx) (services.Identity, error) {
	who, err := middleware.CurrentIdentity(c)
	if err != nil {
		return services.Identity{}, services.ErrAuthenticationRequired
	}
	return who, nil
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, services.InvalidArgument("invalid " + name)
	}
	return id, nil
}

// optionalUUID parses an optional query or body value; empty means uuid.Nil.
func optionalUUID(raw, field string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, services.InvalidArgument("invalid " + field)
	}
	return id, nil
}

func pageFromQuery(c *fiber.Ctx) utils.Page {
	return utils.NewPage(
		utils.AtoiDefault(c.Query("page"), 1),
		utils.AtoiDefault(c.Query("limit"), utils.DefaultPageSize),
	)
}

func paginated(c *fiber.Ctx, data any, page utils.Page, total int64) error {
	return c.JSON(fiber.Map{
		"data": data,
		"pagination": fiber.Map{
			"page":  page.Page,
			"limit": page.Limit,
			"total": total,
			"pages": page.Pages(total),
		},
	})
}
