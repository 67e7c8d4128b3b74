// Package chat runs one conversational turn: resolve, fetch, phrase, record.
package chat

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/odds-chat/internal/model"
	"github.com/sells-group/odds-chat/internal/orchestrator"
)

// Handler resolves a message into a fixed reply or a payload to phrase.
type Handler interface {
	Handle(ctx context.Context, text string) orchestrator.Result
}

// Formatter phrases a payload as a reply.
type Formatter interface {
	Format(ctx context.Context, userID string, history []model.ChatMessage, payload orchestrator.Payload, userQuery string) string
}

// Transcript records messages. Failures are logged, never returned to the
// user.
type Transcript interface {
	AppendMessage(ctx context.Context, msg *model.ChatMessage) error
	History(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error)
}

// Service is safe for concurrent use.
type Service struct {
	handler    Handler
	formatter  Formatter
	transcript Transcript

	nowFunc func() time.Time
}

// NewService creates a Service. transcript may be nil.
func NewService(h Handler, f Formatter, transcript Transcript) *Service {
	return &Service{handler: h, formatter: f, transcript: transcript, nowFunc: time.Now}
}

// Turn answers text given the conversation so far and returns the reply with
// history extended by the user message and the reply.
func (s *Service) Turn(ctx context.Context, userID, text string, history []model.ChatMessage) (string, []model.ChatMessage) {
	userMsg := s.message(userID, model.RoleUser, text)

	res := s.handler.Handle(ctx, text)
	reply := res.Message
	if !res.IsMessage() {
		reply = s.formatter.Format(ctx, userID, history, res.Payload, text)
	}

	zap.L().Info("chat turn",
		zap.String("user_id", userID),
		zap.String("intent", string(res.Query.Intent.Kind)),
		zap.String("sport_key", res.Query.SportKey),
		zap.Bool("fixed_reply", res.IsMessage()),
		zap.Bool("live_data", !res.Payload.IsEmpty()),
		zap.NamedError("reason", res.Reason),
	)

	botMsg := s.message(userID, model.RoleAssistant, reply)
	s.record(ctx, &userMsg)
	s.record(ctx, &botMsg)

	updated := append(slices.Clone(history), userMsg, botMsg)
	return reply, updated
}

// Recent loads the last n recorded messages for userID. Without a
// transcript it returns nil.
func (s *Service) Recent(ctx context.Context, userID string, n int) []model.ChatMessage {
	if s.transcript == nil {
		return nil
	}
	msgs, err := s.transcript.History(ctx, userID, n)
	if err != nil {
		zap.L().Warn("chat: load history failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return msgs
}

func (s *Service) message(userID string, role model.Role, content string) model.ChatMessage {
	return model.ChatMessage{
		UserID:    userID,
		Role:      role,
		Content:   content,
		Timestamp: s.nowFunc().UTC(),
	}
}

func (s *Service) record(ctx context.Context, msg *model.ChatMessage) {
	if s.transcript == nil {
		return
	}
	if err := s.transcript.AppendMessage(ctx, msg); err != nil {
		zap.L().Warn("chat: record message failed",
			zap.String("user_id", msg.UserID),
			zap.String("role", string(msg.Role)),
			zap.Error(err),
		)
	}
}
