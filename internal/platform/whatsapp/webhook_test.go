package whatsapp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type mockSender struct {
	calls []string
	err   error
}

func (m *mockSender) SendText(_ context.Context, to, body string) error {
	m.calls = append(m.calls, to)
	return m.err
}

func newWebhookTest() (*WebhookHandler, *mockSender, *echo.Echo) {
	sender := &mockSender{}
	h := NewWebhookHandler("secret-token", sender, zerolog.New(io.Discard))
	return h, sender, echo.New()
}

func TestWebhook_Verify_Success(t *testing.T) {
	h, _, e := newWebhookTest()

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=abc123", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Verify(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "abc123" {
		t.Errorf("expected challenge echoed back, got %q", rec.Body.String())
	}
}

func TestWebhook_Verify_WrongToken(t *testing.T) {
	h, _, e := newWebhookTest()

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=abc123", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Verify(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestWebhook_Verify_MissingMode(t *testing.T) {
	h, _, e := newWebhookTest()

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.verify_token=secret-token&hub.challenge=abc123", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Verify(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

const inboundMessageBody = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "changes": [{
      "value": {
        "messages": [{"from": "919876543210", "text": {"body": "hi"}}]
      }
    }]
  }]
}`

func TestWebhook_Receive_AutoReplies(t *testing.T) {
	h, sender, e := newWebhookTest()

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(inboundMessageBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Receive(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if len(sender.calls) != 1 || sender.calls[0] != "919876543210" {
		t.Errorf("expected auto-reply to sender, got %v", sender.calls)
	}
}

func TestWebhook_Receive_NonMessageNotification(t *testing.T) {
	h, sender, e := newWebhookTest()

	body := `{"object": "whatsapp_business_account", "entry": [{"changes": [{"value": {}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Receive(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if len(sender.calls) != 0 {
		t.Errorf("expected no auto-reply, got %v", sender.calls)
	}
}

func TestWebhook_Receive_MalformedStill200(t *testing.T) {
	h, sender, e := newWebhookTest()

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Receive(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 even for malformed payload, got %d", rec.Code)
	}
	if len(sender.calls) != 0 {
		t.Errorf("expected no auto-reply, got %v", sender.calls)
	}
}

func TestWebhook_Receive_SendFailureStill200(t *testing.T) {
	h, sender, e := newWebhookTest()
	sender.err = errors.New("provider down")

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(inboundMessageBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Receive(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 despite send failure, got %d", rec.Code)
	}
}

func TestWebhook_RegisterRoutes(t *testing.T) {
	h, _, e := newWebhookTest()
	h.RegisterRoutes(e)

	routePaths := make(map[string]bool)
	for _, r := range e.Routes() {
		routePaths[r.Method+":"+r.Path] = true
	}
	for _, expected := range []string{"GET:/webhook", "POST:/webhook"} {
		if !routePaths[expected] {
			t.Errorf("missing expected route: %s", expected)
		}
	}
}
