package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatApp(r Responder) *fiber.App {
	app := fiber.New()
	SetupRoutes(app, NewHandlers(r, nil))
	return app
}

func postChat(t *testing.T, app *fiber.App, body fiber.Map) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, "/api/chat", bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeChat(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestChatRequiresMessage(t *testing.T) {
	app := newChatApp(nil)

	resp := postChat(t, app, fiber.Map{"message": ""})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDemoResponderKeywords(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"what is your contact number?", "You can contact Raj pharma at 6394109197."},
		{"do you have medicines for fever?", "We offer a wide range of medicines! Check our Shop page for details."},
		{"where are you located?", "Raj pharma is located in Kanpur nagar."},
	}

	app := newChatApp(nil)
	for _, tc := range cases {
		resp := postChat(t, app, fiber.Map{"message": tc.message})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		out := decodeChat(t, resp)
		assert.Equal(t, tc.want, out["text"], "message %q", tc.message)
		assert.Equal(t, true, out["isDemo"])
	}
}

func TestDemoResponderFallback(t *testing.T) {
	app := newChatApp(nil)

	resp := postChat(t, app, fiber.Map{"message": "tell me about cricket"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decodeChat(t, resp)
	assert.Contains(t, out["text"], "Demo Mode")
}

type stubResponder struct {
	reply string
	err   error
	seen  []Message
}

func (s *stubResponder) Respond(_ context.Context, _ string, history []Message) (string, error) {
	s.seen = history
	return s.reply, s.err
}

func TestConfiguredResponderOmitsDemoFlag(t *testing.T) {
	stub := &stubResponder{reply: "Take it with food."}
	app := newChatApp(stub)

	resp := postChat(t, app, fiber.Map{
		"message": "how do I take amoxicillin?",
		"history": []fiber.Map{{"role": "user", "text": "hi"}},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decodeChat(t, resp)
	assert.Equal(t, "Take it with food.", out["text"])
	_, hasDemo := out["isDemo"]
	assert.False(t, hasDemo)
	require.Len(t, stub.seen, 1)
	assert.Equal(t, "hi", stub.seen[0].Text)
}

func TestResponderFailureReturnsFriendlyError(t *testing.T) {
	stub := &stubResponder{err: assert.AnError}
	app := newChatApp(stub)

	resp := postChat(t, app, fiber.Map{"message": "anything"})
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	out := decodeChat(t, resp)
	assert.Equal(t, "I'm having trouble thinking right now. Please try again later.", out["message"])
}

func TestGeminiResponderRequiresKey(t *testing.T) {
	_, err := NewGeminiResponder("", "")
	assert.Error(t, err)
}
