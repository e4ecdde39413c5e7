package handlers

import (
	"context"
	"time"

	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/anjiri1684/tutor_marketplace/services"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required,uuid"`
	Content    string `json:"content" validate:"required"`
}

// GetMessages lists the caller's conversations, or one thread when userId
// is given. Reading a thread marks it as read.
func (h *Handler) GetMessages(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	rawOther := c.Query("userId", c.Query("user_id"))
	if rawOther == "" {
		conversations, err := h.Messages.Conversations(c.UserContext(), who)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(conversations)
	}

	other, err := optionalUUID(rawOther, "userId")
	if err != nil {
		return serviceError(c, err)
	}
	page := pageFromQuery(c)
	if c.Query("limit") == "" {
		page.Limit = 50
	}
	messages, total, err := h.Messages.Conversation(c.UserContext(), who, other, page)
	if err != nil {
		return serviceError(c, err)
	}
	return paginated(c, messages, page, total)
}

func (h *Handler) SendMessage(c *fiber.Ctx) error {
	who, err := identity(c)
	if err != nil {
		return serviceError(c, err)
	}
	var req SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return serviceError(c, err)
	}
	msg, err := h.Messages.Send(c.UserContext(), who, uuid.MustParse(req.ReceiverID), req.Content)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

type wsAuthFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type wsInboundFrame struct {
	Type       string `json:"type"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

const wsAuthTimeout = 10 * time.Second

// ServeWs authenticates a socket with its first frame, registers it with the
// hub and relays inbound chat frames through the message service.
func (h *Handler) ServeWs(c *websocketcontrib.Conn) {
	_ = c.SetReadDeadline(time.Now().Add(wsAuthTimeout))
	var auth wsAuthFrame
	if err := c.ReadJSON(&auth); err != nil || auth.Type != "auth" {
		log.Debug().Err(err).Msg("websocket auth failed: invalid or missing auth frame")
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message", "code": codeUnauthorized})
		_ = c.Close()
		return
	}
	who, err := middleware.ParseToken(h.Settings.JWTSecret, auth.Token)
	if err != nil {
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token", "code": codeUnauthorized})
		_ = c.Close()
		return
	}
	_ = c.SetReadDeadline(time.Time{})

	client := h.Hub.Register(who.ID, c)
	defer h.Hub.Unregister(client)
	log.Debug().Str("user_id", who.ID.String()).Msg("websocket client connected")
	client.Reply("connected", fiber.Map{"user_id": who.ID})

	for {
		var frame wsInboundFrame
		if err := c.ReadJSON(&frame); err != nil {
			if websocketcontrib.IsUnexpectedCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
				log.Debug().Err(err).Str("user_id", who.ID.String()).Msg("websocket read error")
			}
			return
		}
		switch frame.Type {
		case "message":
			h.relayMessage(client.Reply, who, frame)
		case "ping":
			client.Reply("pong", nil)
		default:
			client.Reply("error", fiber.Map{"error": "unknown frame type", "code": codeInvalidArgument})
		}
	}
}

func (h *Handler) relayMessage(reply func(string, any), who services.Identity, frame wsInboundFrame) {
	receiverID, err := optionalUUID(frame.ReceiverID, "receiver_id")
	if err == nil && receiverID == uuid.Nil {
		err = services.InvalidArgument("receiver_id is required")
	}
	if err != nil {
		reply("error", fiber.Map{"error": err.Error(), "code": codeInvalidArgument})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	msg, err := h.Messages.Send(ctx, who, receiverID, frame.Content)
	if err != nil {
		status, code := statusFor(services.KindOf(err))
		text := err.Error()
		if status == fiber.StatusInternalServerError {
			log.Error().Err(err).Str("user_id", who.ID.String()).Msg("websocket message failed")
			text = "Failed to send message"
		}
		reply("error", fiber.Map{"error": text, "code": code})
		return
	}
	reply("message-sent", msg)
}
