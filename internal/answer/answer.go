// Package answer phrases orchestrator payloads as chat replies using the
// Anthropic Messages API.
package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/odds-chat/internal/config"
	"github.com/sells-group/odds-chat/internal/model"
	"github.com/sells-group/odds-chat/internal/orchestrator"
	"github.com/sells-group/odds-chat/pkg/anthropic"
)

// SystemPrompt frames every answer.
const SystemPrompt = "You are a friendly, concise sports assistant. You have access to structured data " +
	"about upcoming matches, scores, and betting odds. You also have broad sports knowledge. " +
	"When the user asks a question, use the information provided below to give a helpful answer in natural language. " +
	"Do not just dump JSON; interpret the data or answer from general knowledge if no data is available."

// Formatter turns a payload and recent history into a reply.
type Formatter struct {
	client       anthropic.Client
	model        string
	maxTokens    int64
	temperature  float64
	historyTurns int
}

// NewFormatter creates a Formatter from config.
func NewFormatter(client anthropic.Client, cfg config.AnthropicConfig) *Formatter {
	return &Formatter{
		client:       client,
		model:        cfg.Model,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
		historyTurns: cfg.HistoryTurns,
	}
}

// Format asks the model to answer userQuery from payload. If the model call
// fails, the payload JSON is returned instead so the user still sees the data.
func (f *Formatter) Format(ctx context.Context, userID string, history []model.ChatMessage, payload orchestrator.Payload, userQuery string) string {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		// Payload holds only plain data types.
		data = []byte("{}")
	}

	temp := f.temperature
	req := anthropic.MessageRequest{
		Model:       f.model,
		MaxTokens:   f.maxTokens,
		System:      anthropic.CachedSystem(SystemPrompt),
		Messages:    buildMessages(model.TrimHistory(history, f.historyTurns), userQuery, data),
		Temperature: &temp,
	}

	resp, err := f.client.CreateMessage(ctx, req)
	if err != nil {
		zap.L().Error("answer: llm call failed, replying with raw data",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return string(data)
	}
	resp.Usage.LogUsage(f.model, userID)

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return string(data)
	}
	return text
}

func buildMessages(history []model.ChatMessage, userQuery string, data []byte) []anthropic.Message {
	msgs := make([]anthropic.Message, 0, len(history)+1)
	for _, m := range history {
		// The conversation sent to the model must open with a user turn.
		if len(msgs) == 0 && m.Role != model.RoleUser {
			continue
		}
		msgs = append(msgs, anthropic.Message{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs, anthropic.Message{
		Role: string(model.RoleUser),
		Content: fmt.Sprintf("User asked: %q\nHere is the data (JSON):\n%s\nBased on this data or your knowledge, please give a helpful answer.",
			userQuery, data),
	})
	return msgs
}
