package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/odds-chat/internal/config"
	"github.com/sells-group/odds-chat/internal/model"
	"github.com/sells-group/odds-chat/internal/orchestrator"
	"github.com/sells-group/odds-chat/pkg/anthropic"
)

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func testConfig() config.AnthropicConfig {
	return config.AnthropicConfig{Model: "claude-sonnet-4-5-20250929", MaxTokens: 512, Temperature: 0.4, HistoryTurns: 2}
}

func textResponse(s string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{Content: []anthropic.ContentBlock{{Type: "text", Text: s}}}
}

func TestFormat(t *testing.T) {
	llm := new(mockLLM)
	var got anthropic.MessageRequest
	llm.On("CreateMessage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(anthropic.MessageRequest) }).
		Return(textResponse("  The Lakers are home against the Suns.  "), nil)

	history := []model.ChatMessage{
		{Role: model.RoleUser, Content: "first"},
		{Role: model.RoleAssistant, Content: "reply one"},
		{Role: model.RoleUser, Content: "second"},
	}
	payload := orchestrator.Payload{SportKey: "basketball_nba", Matchup: &orchestrator.Matchup{HomeTeam: "Lakers", AwayTeam: "Suns"}}

	out := NewFormatter(llm, testConfig()).Format(context.Background(), "u1", history, payload, "who is the home team in the nba")
	assert.Equal(t, "The Lakers are home against the Suns.", out)

	assert.Equal(t, "claude-sonnet-4-5-20250929", got.Model)
	assert.Equal(t, int64(512), got.MaxTokens)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.4, *got.Temperature, 0.0001)
	require.Len(t, got.System, 1)
	assert.Equal(t, SystemPrompt, got.System[0].Text)

	// Trimmed to two turns, then the leading assistant turn is dropped.
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "second", got.Messages[0].Content)
	last := got.Messages[1]
	assert.Equal(t, "user", last.Role)
	assert.Contains(t, last.Content, `User asked: "who is the home team in the nba"`)
	assert.Contains(t, last.Content, `"home_team": "Lakers"`)
}

func TestFormat_LLMFailureFallsBackToJSON(t *testing.T) {
	llm := new(mockLLM)
	llm.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, errors.New("anthropic: create message: 529 overloaded"))

	payload := orchestrator.Payload{SportKey: "soccer_epl"}
	out := NewFormatter(llm, testConfig()).Format(context.Background(), "u1", nil, payload, "epl odds")
	assert.JSONEq(t, `{"sport_key":"soccer_epl"}`, out)
}

func TestFormat_EmptyPayloadFallbackIsEmptyObject(t *testing.T) {
	llm := new(mockLLM)
	llm.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	out := NewFormatter(llm, testConfig()).Format(context.Background(), "u1", nil, orchestrator.Payload{}, "who won the 1998 world cup")
	assert.Equal(t, "{}", out)
}

func TestFormat_BlankReplyFallsBackToJSON(t *testing.T) {
	llm := new(mockLLM)
	llm.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse("   "), nil)

	out := NewFormatter(llm, testConfig()).Format(context.Background(), "u1", nil, orchestrator.Payload{}, "anything")
	assert.Equal(t, "{}", out)
}

func TestBuildMessages(t *testing.T) {
	msgs := buildMessages([]model.ChatMessage{
		{Role: model.RoleAssistant, Content: "orphan"},
		{Role: model.RoleUser, Content: "q1"},
		{Role: model.RoleAssistant, Content: "a1"},
	}, "q2", []byte("{}"))

	require.Len(t, msgs, 3)
	assert.Equal(t, "q1", msgs[0].Content)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.True(t, strings.HasPrefix(msgs[2].Content, `User asked: "q2"`))
}
