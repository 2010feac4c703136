package services

import (
	"errors"
	"regexp"
	"strings"
)

const (
	MaxChatMessageLength = 1000

	ChatLanguageEnglish = "english"
	ChatLanguageTwi     = "twi"
)

// User-facing validation messages returned verbatim by the chat endpoint.
var (
	ErrChatMessageRequired = errors.New("Message is required and must be a string")
	ErrChatMessageEmpty    = errors.New("Message cannot be empty")
	ErrChatMessageTooLong  = errors.New("Message is too long (maximum 1000 characters)")
	ErrChatLanguageInvalid = errors.New(`Language must be either "english" or "twi"`)
)

var (
	chatScriptBlockPattern  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	chatJavascriptPattern   = regexp.MustCompile(`(?i)javascript:`)
	chatEventHandlerPattern = regexp.MustCompile(`(?i)on\w+=`)
)

type ChatInput struct {
	Message  *string
	Language string
}

// ValidateChatInput checks the raw message and returns the normalized
// language. A nil message means the field was missing or not a string.
func ValidateChatInput(input ChatInput) (string, error) {
	if input.Message == nil {
		return "", ErrChatMessageRequired
	}
	message := *input.Message
	if strings.TrimSpace(message) == "" {
		return "", ErrChatMessageEmpty
	}
	if runeLength(message) > MaxChatMessageLength {
		return "", ErrChatMessageTooLong
	}

	language := strings.ToLower(strings.TrimSpace(input.Language))
	switch language {
	case "":
		return ChatLanguageEnglish, nil
	case ChatLanguageEnglish, ChatLanguageTwi:
		return language, nil
	default:
		return "", ErrChatLanguageInvalid
	}
}

// SanitizeChatText trims, caps the text at MaxChatMessageLength runes and
// removes script blocks, javascript: URLs and inline event handlers.
func SanitizeChatText(raw string) string {
	text := strings.TrimSpace(raw)
	if runeLength(text) > MaxChatMessageLength {
		text = string([]rune(text)[:MaxChatMessageLength])
	}
	text = chatScriptBlockPattern.ReplaceAllString(text, "")
	text = chatJavascriptPattern.ReplaceAllString(text, "")
	text = chatEventHandlerPattern.ReplaceAllString(text, "")
	return text
}
