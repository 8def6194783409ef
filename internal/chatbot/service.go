package chatbot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"clinic-app-server/internal/models"
)

// historyWindow is how many stored messages are replayed to the model for
// conversational context.
const historyWindow = 10

const systemContext = `You are a helpful healthcare assistant for a clinic web application.
You can help with:
- General health information and tips
- Explaining medical terms
- Appointment scheduling guidance
- Symptom information (but always recommend consulting a doctor)

Important: Always remind users to consult with healthcare professionals for medical advice.
Keep responses friendly, helpful, and informative.`

// FallbackReply is returned whenever the AI service is unreachable or
// misconfigured; chat never surfaces a hard failure to the user.
const FallbackReply = "I apologize, but I'm having trouble connecting to my AI service right now. Please try again later or contact support if the issue persists."

// Service answers chat messages through Google's Gemini API.
type Service struct {
	client  *genai.Client
	modelID string
}

// NewService creates the chat assistant service.
func NewService(ctx context.Context, apiKey, modelID string) (*Service, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("chatbot: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("chatbot: failed to create gemini client: %w", err)
	}

	return &Service{client: client, modelID: modelID}, nil
}

// historyContents converts the most recent stored messages (oldest first)
// into Gemini chat history, skipping empty content.
func historyContents(history []models.ChatMessage) []*genai.Content {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	var contents []*genai.Content
	for _, msg := range history {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		role := "model"
		if msg.IsFromUser {
			role = "user"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(content)},
		})
	}
	return contents
}

// Reply generates an assistant reply for message, given the conversation
// history ordered oldest first. Any failure degrades to the fallback reply.
func (s *Service) Reply(ctx context.Context, history []models.ChatMessage, message string) string {
	if s == nil || s.client == nil {
		return FallbackReply
	}

	model := s.client.GenerativeModel(s.modelID)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemContext))

	cs := model.StartChat()
	cs.History = historyContents(history)

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		log.Printf("chatbot: gemini request failed: %v", err)
		return FallbackReply
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return FallbackReply
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			reply.WriteString(string(text))
		}
	}
	if strings.TrimSpace(reply.String()) == "" {
		return FallbackReply
	}
	return strings.TrimSpace(reply.String())
}
