package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/nyinsen/internal/metrics"
	"github.com/terraincognita07/nyinsen/internal/models"
	"github.com/terraincognita07/nyinsen/internal/ratelimit"
)

const (
	DefaultChatHistoryLimit = 50
	MaxChatHistoryLimit     = 100
)

var (
	ErrChatRateLimited = errors.New("Rate limit exceeded. Please try again later.")
	ErrChatUnavailable = errors.New("Service temporarily unavailable. Please try again later.")
)

// ChatRateLimitError carries the wait reported by the limiter.
type ChatRateLimitError struct {
	RetryAfter time.Duration
}

func (err *ChatRateLimitError) Error() string {
	return ErrChatRateLimited.Error()
}

func (err *ChatRateLimitError) Unwrap() error {
	return ErrChatRateLimited
}

type ChatLimiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Decision, error)
}

type ChatCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type ChatMessageRepository interface {
	CreateExchange(question *models.ChatMessage, answer *models.ChatMessage) error
	ListRecent(userID uint, limit int) ([]models.ChatMessage, error)
}

type ChatReply struct {
	Response  string `json:"response"`
	RequestID string `json:"request_id"`
}

type ChatService struct {
	limiter   ChatLimiter
	completer ChatCompleter
	messages  ChatMessageRepository
	log       logrus.FieldLogger
	requestID func() string
}

func NewChatService(limiter ChatLimiter, completer ChatCompleter, messages ChatMessageRepository, log logrus.FieldLogger) *ChatService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ChatService{
		limiter:   limiter,
		completer: completer,
		messages:  messages,
		log:       log,
		requestID: uuid.NewString,
	}
}

func ChatCallerKey(userID uint) string {
	return "user:" + strconv.FormatUint(uint64(userID), 10)
}

// Ask runs one question through limit, validation, sanitizing, completion and
// persistence, in that order.
func (service *ChatService) Ask(ctx context.Context, userID uint, input ChatInput) (ChatReply, error) {
	if err := service.Admit(ctx, userID); err != nil {
		return ChatReply{}, err
	}
	return service.Answer(ctx, userID, input)
}

// Admit consumes one unit of the caller's chat quota. A limiter backend
// failure admits the request.
func (service *ChatService) Admit(ctx context.Context, userID uint) error {
	key := ChatCallerKey(userID)
	decision, err := service.limiter.Allow(ctx, key)
	switch {
	case err != nil:
		service.log.WithError(err).WithField("caller", key).Warn("chat rate limiter unavailable, allowing request")
	case !decision.Allowed:
		metrics.ChatRequestsTotal.WithLabelValues("rate_limited").Inc()
		metrics.RateLimitDenialsTotal.WithLabelValues("chat").Inc()
		return &ChatRateLimitError{RetryAfter: decision.RetryAfter}
	}
	return nil
}

// Answer runs an already admitted question from validation onwards.
func (service *ChatService) Answer(ctx context.Context, userID uint, input ChatInput) (ChatReply, error) {
	language, err := ValidateChatInput(input)
	if err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("invalid").Inc()
		return ChatReply{}, err
	}

	question := SanitizeChatText(*input.Message)
	if question == "" {
		metrics.ChatRequestsTotal.WithLabelValues("invalid").Inc()
		return ChatReply{}, ErrChatMessageEmpty
	}

	requestID := service.requestID()
	logEntry := service.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    userID,
		"language":   language,
	})

	rawAnswer, err := service.completer.Complete(ctx, BuildChatPrompt(language, question))
	if err != nil {
		logEntry.WithError(err).Error("chat completion failed")
		metrics.ChatRequestsTotal.WithLabelValues("unavailable").Inc()
		return ChatReply{}, ErrChatUnavailable
	}
	answer := SanitizeChatText(rawAnswer)
	if answer == "" {
		logEntry.Error("chat completion was empty after sanitizing")
		metrics.ChatRequestsTotal.WithLabelValues("unavailable").Inc()
		return ChatReply{}, ErrChatUnavailable
	}

	questionRow := &models.ChatMessage{
		UserID:    userID,
		RequestID: requestID,
		Role:      models.ChatRoleUser,
		Language:  language,
		Content:   question,
	}
	answerRow := &models.ChatMessage{
		UserID:    userID,
		RequestID: requestID,
		Role:      models.ChatRoleAssistant,
		Language:  language,
		Content:   answer,
	}
	if err := service.messages.CreateExchange(questionRow, answerRow); err != nil {
		metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		return ChatReply{}, fmt.Errorf("save chat exchange: %w", err)
	}

	metrics.ChatRequestsTotal.WithLabelValues("answered").Inc()
	logEntry.Debug("chat answered")
	return ChatReply{Response: answer, RequestID: requestID}, nil
}

func (service *ChatService) History(userID uint, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultChatHistoryLimit
	}
	if limit > MaxChatHistoryLimit {
		limit = MaxChatHistoryLimit
	}
	messages, err := service.messages.ListRecent(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat history: %w", err)
	}
	return messages, nil
}
