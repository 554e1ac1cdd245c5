// Package ai provides the generative fallback responder used for free
// chat outside the scripted intake flow.
package ai

import (
	"context"
	"fmt"
	"sync"

	convservice "intake_backend/internal/conversation/service"
	"intake_backend/platform/config"
	"intake_backend/platform/logger"

	"google.golang.org/genai"
)

const (
	systemPrompt = "Você é um assistente jurídico do escritório. " +
		"Mantenha respostas claras, profissionais e em português."

	// memoryWindow bounds the per-session history sent with each request.
	memoryWindow = 10
)

type exchange struct {
	user  string
	model string
}

// Responder answers free chat through Gemini, keeping a bounded
// conversation window per session in memory.
type Responder struct {
	client *genai.Client
	model  string
	log    *logger.Logger

	mu       sync.Mutex
	sessions map[string][]exchange
}

// NewResponder builds the Gemini responder. Returns (nil, nil) when the API
// key is not configured; callers treat a nil responder as disabled.
func NewResponder(ctx context.Context, cfg config.GeminiConfig, log *logger.Logger) (*Responder, error) {
	if !cfg.IsGeminiEnabled() {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return &Responder{
		client:   client,
		model:    cfg.GetGeminiModel(),
		log:      log,
		sessions: make(map[string][]exchange),
	}, nil
}

// Compile-time check against the conversation orchestrator's contract.
var _ convservice.FallbackResponder = (*Responder)(nil)

// Respond produces a reply for one free-chat message, carrying the
// session's recent history as context.
func (r *Responder) Respond(ctx context.Context, text, sessionID string) (string, error) {
	contents := r.buildContents(sessionID, text)

	resp, err := r.client.Models.GenerateContent(ctx, r.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	answer := resp.Text()
	if answer == "" {
		return "", fmt.Errorf("gemini returned empty response")
	}

	r.remember(sessionID, text, answer)
	return answer, nil
}

// ClearSession drops the stored history for a session.
func (r *Responder) ClearSession(sessionID string) {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
}

func (r *Responder) buildContents(sessionID, text string) []*genai.Content {
	r.mu.Lock()
	history := r.sessions[sessionID]
	r.mu.Unlock()

	contents := make([]*genai.Content, 0, len(history)*2+1)
	for _, e := range history {
		contents = append(contents,
			genai.NewContentFromText(e.user, genai.RoleUser),
			genai.NewContentFromText(e.model, genai.RoleModel),
		)
	}
	return append(contents, genai.NewContentFromText(text, genai.RoleUser))
}

func (r *Responder) remember(sessionID, user, model string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := append(r.sessions[sessionID], exchange{user: user, model: model})
	if len(history) > memoryWindow {
		history = history[len(history)-memoryWindow:]
	}
	r.sessions[sessionID] = history
}
