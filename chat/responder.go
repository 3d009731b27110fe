package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Message is one turn of a conversation.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Responder answers a visitor message given the prior conversation.
type Responder interface {
	Respond(ctx context.Context, message string, history []Message) (string, error)
}

// DemoResponder answers from a small keyword table. It stands in whenever
// no upstream model is configured so the widget still works.
type DemoResponder struct{}

func (DemoResponder) Respond(_ context.Context, message string, _ []Message) (string, error) {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "contact") || strings.Contains(lower, "number"):
		return "You can contact Raj pharma at 6394109197.", nil
	case strings.Contains(lower, "medicines") || strings.Contains(lower, "shop"):
		return "We offer a wide range of medicines! Check our Shop page for details.", nil
	case strings.Contains(lower, "hi") || strings.Contains(lower, "hello"):
		return "Hello! I'm the Raj pharma assistant (Demo Mode). Once my owner adds the Gemini API key, I'll be much smarter!", nil
	case strings.Contains(lower, "location") || strings.Contains(lower, "where"):
		return "Raj pharma is located in Kanpur nagar.", nil
	}
	return "Hello! I'm currently in 'Demo Mode' because the Gemini API Key is missing. However, I can still help! Raj pharma is located in Kanpur nagar and owned by Kushagra. You can reach us at 6394109197.", nil
}

const systemInstruction = `You are the AI Assistant for "Raj pharma", a trusted online medical store located in Kanpur nagar.
Your goal is to help customers with medicine inquiries, healthcare tips, and store information.
Store Owner: Kushagra
Contact: 6394109197
Location: Kanpur nagar
Services: Online medicine delivery, healthcare consultations, and medical supplies.

IMPORTANT RESTRICTION:
You are strictly a MEDICAL and WEBSITE assistant. Politely refuse anything else.

Guidelines:
1. Always be professional, empathetic, and helpful.
2. If asked about specific medicines, advise the user to consult a doctor for serious conditions.
3. Mention that "Raj pharma" provides quality medicines at affordable prices.
4. Keep responses concise and easy to read.
5. If you don't know the answer, suggest the user contact the store directly at 6394109197.`

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiResponder forwards the conversation to the Gemini REST API.
type GeminiResponder struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGeminiResponder builds a responder for the given API key. It errors on
// an empty key so callers fall back to the demo responder explicitly.
func NewGeminiResponder(apiKey, model string) (*GeminiResponder, error) {
	if apiKey == "" {
		return nil, errors.New("chat: gemini api key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiResponder{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGeminiBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiResponder) Respond(ctx context.Context, message string, history []Message) (string, error) {
	payload := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemInstruction}}},
	}
	for _, m := range history {
		role := "user"
		if m.Role == "model" || m.Role == "assistant" {
			role = "model"
		}
		payload.Contents = append(payload.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Text}},
		})
	}
	payload.Contents = append(payload.Contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: message}},
	})

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.baseURL, g.model, url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat: gemini returned status %d", resp.StatusCode)
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("chat: empty response from gemini")
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}
