// Package whatsapp talks to the WhatsApp Cloud API: an outbound client for
// text and template messages, and the inbound webhook endpoints Meta calls
// for verification and user messages.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrSendFailed is returned for every transport or provider failure. Callers
// only get success or failure; the full provider response is logged here.
var ErrSendFailed = errors.New("failed to send whatsapp message")

// Template names registered with the provider.
const (
	templateWelcome    = "patient_welcome"
	templateFollowUp   = "follow_up_visit"
	templateReportLink = "report_link"
)

const templateLanguage = "en_US"

// Client sends messages through the WhatsApp Cloud API. Each Send* method
// performs exactly one HTTP call; there is no retry or queuing.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	phoneNumberID string
	accessToken   string
	logger        zerolog.Logger
}

// NewClient creates a Client for the given Cloud API base URL (e.g.
// "https://graph.facebook.com/v20.0"), business phone number id and access
// token.
func NewClient(baseURL, phoneNumberID, accessToken string, logger zerolog.Logger) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		baseURL:       baseURL,
		phoneNumberID: phoneNumberID,
		accessToken:   accessToken,
		logger:        logger,
	}
}

// -- Wire types (Cloud API message envelope) --

type message struct {
	MessagingProduct string        `json:"messaging_product"`
	To               string        `json:"to"`
	Type             string        `json:"type"`
	Text             *textBody     `json:"text,omitempty"`
	Template         *templateBody `json:"template,omitempty"`
}

type textBody struct {
	Body string `json:"body"`
}

type templateBody struct {
	Name       string      `json:"name"`
	Language   language    `json:"language"`
	Components []component `json:"components"`
}

type language struct {
	Code string `json:"code"`
}

type component struct {
	Type       string      `json:"type"`
	SubType    string      `json:"sub_type,omitempty"`
	Index      *int        `json:"index,omitempty"`
	Parameters []parameter `json:"parameters"`
}

type parameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func textParams(texts ...string) []parameter {
	params := make([]parameter, 0, len(texts))
	for _, t := range texts {
		params = append(params, parameter{Type: "text", Text: t})
	}
	return params
}

// -- Message constructors --

// SendText sends a plain text message, used for the webhook auto-reply.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	return c.send(ctx, &message{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &textBody{Body: body},
	})
}

// SendWelcome sends the registration welcome template, parameterized by the
// patient's name.
func (c *Client) SendWelcome(ctx context.Context, to, patientName string) error {
	return c.send(ctx, c.templateMessage(to, templateWelcome, []component{
		{Type: "body", Parameters: textParams(patientName)},
	}))
}

// SendVisitCreated sends the follow-up visit template, parameterized by the
// patient's name.
func (c *Client) SendVisitCreated(ctx context.Context, to, patientName string) error {
	return c.send(ctx, c.templateMessage(to, templateFollowUp, []component{
		{Type: "body", Parameters: textParams(patientName)},
	}))
}

// SendReportLink sends the report download template: name and visit id in the
// body, and the stored file name as the URL button parameter the provider
// appends to the template's base link.
func (c *Client) SendReportLink(ctx context.Context, to, patientName, visitID, fileToken string) error {
	idx := 0
	return c.send(ctx, c.templateMessage(to, templateReportLink, []component{
		{Type: "body", Parameters: textParams(patientName, visitID)},
		{Type: "button", SubType: "url", Index: &idx, Parameters: textParams(fileToken)},
	}))
}

func (c *Client) templateMessage(to, name string, components []component) *message {
	return &message{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
		Template: &templateBody{
			Name:       name,
			Language:   language{Code: templateLanguage},
			Components: components,
		},
	}
}

// send performs the single outbound call. Failures are logged with full
// provider detail and collapsed into ErrSendFailed.
func (c *Client) send(ctx context.Context, msg *message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: marshal payload: %v", ErrSendFailed, err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrSendFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("to", msg.To).
			Str("message_type", msg.Type).
			Msg("whatsapp request failed")
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("to", msg.To).
			Str("message_type", msg.Type).
			Str("response", string(body)).
			Msg("whatsapp api error")
		return fmt.Errorf("%w: status %d", ErrSendFailed, resp.StatusCode)
	}

	c.logger.Info().
		Str("to", msg.To).
		Str("message_type", msg.Type).
		Msg("whatsapp message sent")
	return nil
}
