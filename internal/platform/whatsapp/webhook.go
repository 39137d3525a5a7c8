package whatsapp

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// autoReplyText is sent in response to any inbound patient message.
const autoReplyText = "Thank you for contacting Gemini Hospital. Our staff will assist you shortly."

// TextSender sends a plain text message to a phone number. Satisfied by
// *Client; tests substitute a recorder.
type TextSender interface {
	SendText(ctx context.Context, to, body string) error
}

// WebhookHandler serves the endpoints Meta calls: subscription verification
// (GET) and inbound message delivery (POST).
type WebhookHandler struct {
	verifyToken string
	sender      TextSender
	logger      zerolog.Logger
}

func NewWebhookHandler(verifyToken string, sender TextSender, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{verifyToken: verifyToken, sender: sender, logger: logger}
}

// RegisterRoutes mounts the webhook endpoints on the root of the server.
func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/webhook", h.Verify)
	e.POST("/webhook", h.Receive)
}

// inboundEnvelope mirrors the Cloud API change-notification payload, pared
// down to the sender we need for the auto-reply.
type inboundEnvelope struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// Verify answers Meta's subscription handshake: echo the challenge when the
// mode is "subscribe" and the token matches, 403 otherwise.
func (h *WebhookHandler) Verify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.verifyToken {
		return c.String(http.StatusOK, challenge)
	}
	return c.NoContent(http.StatusForbidden)
}

// Receive handles an inbound message notification. The provider expects an
// acknowledgement no matter what, so every path returns 200: malformed
// payloads, non-message notifications, and auto-reply failures are logged
// and swallowed.
func (h *WebhookHandler) Receive(c echo.Context) error {
	var envelope inboundEnvelope
	if err := c.Bind(&envelope); err != nil {
		h.logger.Warn().Err(err).Msg("malformed webhook payload")
		return c.NoContent(http.StatusOK)
	}

	from := envelope.firstSender()
	if envelope.Object != "whatsapp_business_account" || from == "" {
		return c.NoContent(http.StatusOK)
	}

	if err := h.sender.SendText(c.Request().Context(), from, autoReplyText); err != nil {
		h.logger.Error().Err(err).Str("to", from).Msg("auto-reply failed")
	}
	return c.NoContent(http.StatusOK)
}

func (e *inboundEnvelope) firstSender() string {
	if len(e.Entry) == 0 || len(e.Entry[0].Changes) == 0 {
		return ""
	}
	messages := e.Entry[0].Changes[0].Value.Messages
	if len(messages) == 0 {
		return ""
	}
	return messages[0].From
}
